package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var profilesOpenCmd = &cobra.Command{
	Use:   "open [name-or-id]",
	Short: "Print a profile's directory path",
	Long: `Print a profile's directory path, creating the directory if a prior
operation left it missing. Defaults to the active profile.`,
	Args: cobra.MaximumNArgs(1),
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

		sel := ""
		if len(args) == 1 {
			sel = args[0]
		}
		id, err := resolveProfile(mg, sel)
		if err != nil {
			return err
		}

		path, err := m.OpenProfileDir(mg.GameSlug, id)
		if err != nil {
			return fmt.Errorf("error resolving profile directory: %w", err)
		}

		fmt.Println(path)

		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesOpenCmd)
}
