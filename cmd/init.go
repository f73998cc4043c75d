package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/galeproject/gale/internal/paths"
	"github.com/galeproject/gale/internal/store"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize gale's database and filesystem",
	Long: `Initialize gale's local state.

Creates the config and state directories and initializes or upgrades the
internal database. This command is safe to run multiple times and will
not overwrite existing data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := os.MkdirAll(paths.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		if err := os.MkdirAll(paths.StateDir(), 0o755); err != nil {
			return fmt.Errorf("error creating state directory: %w", err)
		}

		st, err := store.Open(ctx, paths.StateDBPath())
		if err != nil {
			return fmt.Errorf("error initializing database: %w", err)
		}
		defer st.Close()

		fmt.Printf("Initialized gale state in %s\n", paths.StateDir())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
