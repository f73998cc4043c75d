package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var profilesCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a profile for a game",
	Long: `Create a new, empty profile and make it active.

Profile names must be non-empty, contain no path separators or other
characters forbidden in file names, and be unique for the game.`,
	Args: cobra.ExactArgs(1),
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

		p, err := m.CreateProfile(ctx, mg.GameSlug, args[0])
		if err != nil {
			return fmt.Errorf("error creating profile: %w", err)
		}

		fmt.Printf("Created profile %q (id=%d)\n", p.Name, p.ID)

		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesCreateCmd)
}
