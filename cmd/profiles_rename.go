package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var profilesRenameCmd = &cobra.Command{
	Use:   "rename <name-or-id> <new-name>",
	Short: "Rename a profile",
	Args:  cobra.ExactArgs(2),
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

		if err := m.RenameProfile(ctx, mg.GameSlug, id, args[1]); err != nil {
			return fmt.Errorf("error renaming profile: %w", err)
		}

		fmt.Printf("Renamed profile %d to %q\n", id, args[1])

		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesRenameCmd)
}
