package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var modsSetVersionCmd = &cobra.Command{
	Use:   "set-version <uuid-or-name> <version>",
	Short: "Change an installed mod to a specific version",
	Long: `Replace an installed mod with a different version of the same package,
keeping its position and enabled state. The version must exist in the
registry.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		mg, err := resolveGame(m, modsGame)
		if err != nil {
			return err
		}
		profileID, err := resolveProfile(mg, modsProfile)
		if err != nil {
			return err
		}

		uuid, err := resolveModUUID(m, mg.GameSlug, profileID, args[0])
		if err != nil {
			return err
		}

		if err := m.ChangeModVersion(ctx, mg.GameSlug, profileID, uuid, args[1]); err != nil {
			return fmt.Errorf("error changing version: %w", err)
		}

		fmt.Printf("Changed %s to version %s\n", args[0], args[1])

		return nil
	},
}

func init() {
	modsCmd.AddCommand(modsSetVersionCmd)
}
