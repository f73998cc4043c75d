package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/galeproject/gale/internal/profile"
)

var modsToggleForce bool

var modsToggleCmd = &cobra.Command{
	Use:   "toggle <uuid-or-name>...",
	Short: "Enable or disable mods in a profile",
	Long: `Flip a mod's enabled state. Disabled mods keep their files in the
profile directory but renamed so the mod loader skips them.

Enabling a mod whose dependencies are disabled, or disabling a mod that
enabled mods depend on, is refused unless --force is given.`,
	Args: cobra.MinimumNArgs(1),
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

		for _, arg := range args {
			uuid, err := resolveModUUID(m, mg.GameSlug, profileID, arg)
			if err != nil {
				return err
			}

			err = m.ToggleMod(ctx, mg.GameSlug, profileID, uuid, modsToggleForce)
			var confirm *profile.ConfirmError
			if errors.As(err, &confirm) {
				fmt.Printf("Not toggling %s: it is linked to these mods:\n", arg)
				for _, d := range confirm.Dependants {
					fmt.Printf("  %s\n", d.Ident)
				}
				fmt.Println("Re-run with --force to toggle it anyway.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("error toggling %s: %w", arg, err)
			}

			fmt.Printf("Toggled %s\n", arg)
		}

		return nil
	},
}

func init() {
	modsCmd.AddCommand(modsToggleCmd)

	modsToggleCmd.Flags().BoolVarP(&modsToggleForce, "force", "f", false,
		"Toggle regardless of dependency state")
}
