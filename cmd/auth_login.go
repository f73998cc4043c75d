package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var authLoginCmd = &cobra.Command{
	Use:   "login <token>",
	Short: "Store a Thunderstore API token",
	Long: `Store a Thunderstore service-account token for the configured host.
Publishing modpacks and sharing profiles by code require one; browsing
and installing mods do not.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		if err := m.SetAuthToken(ctx, args[0]); err != nil {
			return fmt.Errorf("error saving token: %w", err)
		}

		fmt.Println("Token saved")

		return nil
	},
}

func init() {
	authCmd.AddCommand(authLoginCmd)
}
