package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var importCodeName string

var importCodeCmd = &cobra.Command{
	Use:   "code <code>",
	Short: "Import a profile from a sharing code",
	Long: `Download a shared profile from Thunderstore's profile-sharing endpoint
by its code and import it like an r2x archive.`,
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

		p, unresolved, err := m.ImportCode(ctx, mg.GameSlug, args[0], importCodeName)
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
	importCmd.AddCommand(importCodeCmd)

	importCodeCmd.Flags().StringVarP(&importCodeName, "name", "n", "",
		"Profile name to import as (defaults to the name in the manifest)")
}
