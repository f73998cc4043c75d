package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var modsDependantsCmd = &cobra.Command{
	Use:   "dependants <uuid-or-name>",
	Short: "List installed mods that depend on a mod",
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

		deps, err := m.GetDependants(mg.GameSlug, profileID, uuid)
		if err != nil {
			return fmt.Errorf("error finding dependants: %w", err)
		}

		if len(deps) == 0 {
			fmt.Printf("Nothing depends on %s\n", args[0])
			return nil
		}

		for _, d := range deps {
			fmt.Println(d.Ident)
		}

		return nil
	},
}

func init() {
	modsCmd.AddCommand(modsDependantsCmd)
}
