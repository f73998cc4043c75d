package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var modsClearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Delete a game's downloaded package cache",
	Long: `Delete every extracted package in a game's download cache. Installed
profiles keep working; the next install of any mod re-downloads it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		mg, err := resolveGame(m, modsGame)
		if err != nil {
			return err
		}

		if err := m.ClearDownloadCache(mg.GameSlug); err != nil {
			return fmt.Errorf("error clearing cache: %w", err)
		}

		fmt.Printf("Cleared the package cache for %q\n", mg.GameSlug)

		return nil
	},
}

func init() {
	modsCmd.AddCommand(modsClearCacheCmd)
}
