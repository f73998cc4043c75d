package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var gamesRefreshGame string

var gamesRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the Thunderstore package index",
	Long: `Fetch the full Thunderstore package list for a game and replace the
local registry cache with it. Gale refreshes automatically in the
background; this forces an immediate fetch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if viper.GetBool("offline") {
			return fmt.Errorf("refusing to refresh: offline mode is enabled")
		}

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		mg, err := resolveGame(m, gamesRefreshGame)
		if err != nil {
			return err
		}

		err = m.RefreshRegistry(ctx, mg.GameSlug, func(count int) {
			fmt.Printf("\rFetched %d packages...", count)
		})
		fmt.Println()
		if err != nil {
			return fmt.Errorf("error refreshing registry: %w", err)
		}

		fmt.Printf("Registry for %q is up to date\n", mg.GameSlug)

		return nil
	},
}

func init() {
	gamesCmd.AddCommand(gamesRefreshCmd)

	gamesRefreshCmd.Flags().StringVarP(&gamesRefreshGame, "game", "g", "",
		"Game slug to refresh (defaults to the active game)")
}
