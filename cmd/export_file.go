package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var exportFileCmd = &cobra.Command{
	Use:   "file <dest.zip>",
	Short: "Export a profile as an r2x archive",
	Long: `Write a profile to an r2x zip archive: the mod list manifest plus the
profile's config files. The archive imports into gale or any other
r2modman-compatible manager.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		mg, err := resolveGame(m, exportGame)
		if err != nil {
			return err
		}
		profileID, err := resolveProfile(mg, exportProfile)
		if err != nil {
			return err
		}

		if err := m.ExportFile(mg.GameSlug, profileID, args[0]); err != nil {
			return fmt.Errorf("error exporting profile: %w", err)
		}

		fmt.Printf("Exported profile to %s\n", args[0])

		return nil
	},
}

func init() {
	exportCmd.AddCommand(exportFileCmd)
}
