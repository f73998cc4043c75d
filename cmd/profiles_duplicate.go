package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var profilesDuplicateCmd = &cobra.Command{
	Use:   "duplicate <source-name-or-id> <new-name>",
	Short: "Duplicate a profile",
	Long: `Create a new profile as a copy of an existing one: its directory tree,
mod list, and ignored updates are all cloned.`,
	Args: cobra.ExactArgs(2),
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

		sourceID, err := resolveProfile(mg, args[0])
		if err != nil {
			return err
		}

		p, err := m.DuplicateProfile(ctx, mg.GameSlug, args[1], sourceID)
		if err != nil {
			return fmt.Errorf("error duplicating profile: %w", err)
		}

		fmt.Printf("Created profile %q (id=%d) from profile %d\n",
			p.Name, p.ID, sourceID)

		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesDuplicateCmd)
}
