package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var modsIgnoreUpdateUnset bool

var modsIgnoreUpdateCmd = &cobra.Command{
	Use:   "ignore-update <uuid-or-name>",
	Short: "Exclude a mod from bulk updates",
	Args:  cobra.ExactArgs(1),
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

		if err := m.IgnoreUpdate(ctx, mg.GameSlug, profileID, uuid, !modsIgnoreUpdateUnset); err != nil {
			return fmt.Errorf("error updating ignore list: %w", err)
		}

		if modsIgnoreUpdateUnset {
			fmt.Printf("Updates for %s will be offered again\n", args[0])
		} else {
			fmt.Printf("Updates for %s will be ignored\n", args[0])
		}

		return nil
	},
}

func init() {
	modsCmd.AddCommand(modsIgnoreUpdateCmd)

	modsIgnoreUpdateCmd.Flags().BoolVarP(&modsIgnoreUpdateUnset, "unset", "u", false,
		"Stop ignoring updates for the mod")
}
