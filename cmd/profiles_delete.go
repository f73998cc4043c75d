package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <name-or-id>",
	Short: "Delete a profile and its directory",
	Long: `Delete a profile, removing its directory from disk. The last remaining
profile for a game cannot be deleted.`,
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

		id, err := resolveProfile(mg, args[0])
		if err != nil {
			return err
		}

		if err := m.DeleteProfile(ctx, mg.GameSlug, id); err != nil {
			return fmt.Errorf("error deleting profile: %w", err)
		}

		fmt.Printf("Deleted profile %d\n", id)

		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesDeleteCmd)
}
