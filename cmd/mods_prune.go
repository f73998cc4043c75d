package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var modsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove every disabled mod from a profile",
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
		profileID, err := resolveProfile(mg, modsProfile)
		if err != nil {
			return err
		}

		if err := m.RemoveDisabledMods(ctx, mg.GameSlug, profileID); err != nil {
			return fmt.Errorf("error removing disabled mods: %w", err)
		}

		fmt.Println("Removed all disabled mods")

		return nil
	},
}

func init() {
	modsCmd.AddCommand(modsPruneCmd)
}
