package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var configOpenCmd = &cobra.Command{
	Use:   "open <file>",
	Short: "Print a config file's absolute path",
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

		path, err := m.OpenConfigFile(mg.GameSlug, profileID, args[0])
		if err != nil {
			return fmt.Errorf("error resolving config file: %w", err)
		}

		fmt.Println(path)

		return nil
	},
}

func init() {
	configCmd.AddCommand(configOpenCmd)
}
