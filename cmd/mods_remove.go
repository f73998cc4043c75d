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

var modsRemoveForce bool

var modsRemoveCmd = &cobra.Command{
	Use:   "remove <uuid-or-name>...",
	Short: "Remove mods from a profile",
	Long: `Remove mods from a profile, deleting their files from the profile
directory. Removing a mod that enabled mods still depend on is refused
unless --force is given.`,
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

			err = m.RemoveMod(ctx, mg.GameSlug, profileID, uuid, modsRemoveForce)
			var confirm *profile.ConfirmError
			if errors.As(err, &confirm) {
				fmt.Printf("Not removing %s: other enabled mods depend on it:\n", arg)
				for _, d := range confirm.Dependants {
					fmt.Printf("  %s\n", d.Ident)
				}
				fmt.Println("Re-run with --force to remove it anyway.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("error removing %s: %w", arg, err)
			}

			fmt.Printf("Removed %s\n", arg)
		}

		return nil
	},
}

func init() {
	modsCmd.AddCommand(modsRemoveCmd)

	modsRemoveCmd.Flags().BoolVarP(&modsRemoveForce, "force", "f", false,
		"Remove even if enabled mods depend on it")
}
