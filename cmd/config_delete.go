package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var configDeleteCmd = &cobra.Command{
	Use:   "delete <file>",
	Short: "Delete a config file from a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		mg, err := resolveGame(m, configGame)
		if err != nil {
			return err
		}
		profileID, err := resolveProfile(mg, configProfile)
		if err != nil {
			return err
		}

		if err := m.DeleteConfigFile(mg.GameSlug, profileID, args[0]); err != nil {
			return fmt.Errorf("error deleting config file: %w", err)
		}

		fmt.Printf("Deleted %s\n", args[0])

		return nil
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}
