package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var importLocalProfile string

var importLocalCmd = &cobra.Command{
	Use:   "local <archive.zip>",
	Short: "Import a mod from a local archive",
	Long: `Install a mod from a local zip archive instead of the Thunderstore
registry. The archive's content hash is recorded; importing the same
archive into the same profile twice is rejected as a duplicate.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		mg, err := resolveGame(m, importGame)
		if err != nil {
			return err
		}
		profileID, err := resolveProfile(mg, importLocalProfile)
		if err != nil {
			return err
		}

		name, err := m.ImportLocalMod(ctx, mg.GameSlug, profileID, args[0])
		if err != nil {
			return fmt.Errorf("error importing local mod: %w", err)
		}

		fmt.Printf("Imported local mod %q\n", name)

		return nil
	},
}

func init() {
	importCmd.AddCommand(importLocalCmd)

	importLocalCmd.Flags().StringVarP(&importLocalProfile, "profile", "p", "",
		"Profile name or id to install into (defaults to the active profile)")
}
