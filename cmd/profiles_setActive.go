package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var profilesSetActiveCmd = &cobra.Command{
	Use:   "set-active <name-or-id>",
	Short: "Set a game's active profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		mg, err := resolveGame(m, profilesGame)
		if err != nil {
			return err
		}

		id, err := resolveProfile(mg, args[0])
		if err != nil {
			return err
		}

		if err := m.SetActiveProfile(ctx, mg.GameSlug, id); err != nil {
			return fmt.Errorf("error setting active profile: %w", err)
		}

		fmt.Printf("Active profile for %q is now %d\n", mg.GameSlug, id)

		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesSetActiveCmd)
}
