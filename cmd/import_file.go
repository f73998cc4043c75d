package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var importFileCmd = &cobra.Command{
	Use:   "file <archive.zip>",
	Short: "Import a profile from an r2x archive",
	Long: `Import an r2x profile archive. A profile with the manifest's name is
created (or overwritten, if one already exists), its mods are resolved
against the registry and queued for install, and the archive's config
files are copied in.

Mods the registry can't resolve are reported but don't abort the import.`,
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

		p, unresolved, err := m.ImportFile(ctx, mg.GameSlug, args[0], importProfileName)
		if err != nil {
			return fmt.Errorf("error importing profile: %w", err)
		}

		fmt.Printf("Imported profile %q (id=%d)\n", p.Name, p.ID)
		for _, u := range unresolved {
			fmt.Printf("  could not resolve %s\n", u)
		}

		return nil
	},
}

func init() {
	importCmd.AddCommand(importFileCmd)

	importFileCmd.Flags().StringVarP(&importProfileName, "name", "n", "",
		"Profile name to import as (defaults to the name in the archive)")
}
