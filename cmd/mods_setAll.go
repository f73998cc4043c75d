package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var modsSetAllCmd = &cobra.Command{
	Use:       "set-all <on|off>",
	Short:     "Enable or disable every mod in a profile",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var enabled bool
		switch args[0] {
		case "on":
			enabled = true
		case "off":
			enabled = false
		default:
			return fmt.Errorf("argument must be \"on\" or \"off\", got %q", args[0])
		}

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

		if err := m.SetAllModsState(ctx, mg.GameSlug, profileID, enabled); err != nil {
			return fmt.Errorf("error setting mod states: %w", err)
		}

		fmt.Printf("All mods are now %s\n", args[0])

		return nil
	},
}

func init() {
	modsCmd.AddCommand(modsSetAllCmd)
}
