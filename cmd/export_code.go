package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var exportCodeCmd = &cobra.Command{
	Use:   "code",
	Short: "Export a profile as a shareable code",
	Long: `Upload a profile's r2x archive to Thunderstore's profile-sharing
endpoint and print the code other people can import it with.`,
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

		code, err := m.ExportCode(ctx, mg.GameSlug, profileID)
		if err != nil {
			return fmt.Errorf("error exporting profile: %w", err)
		}

		fmt.Printf("Profile code: %s\n", code)

		return nil
	},
}

func init() {
	exportCmd.AddCommand(exportCodeCmd)
}
