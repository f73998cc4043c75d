package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/galeproject/gale/internal/profile"
)

var modsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mods in a profile",
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

		mods, err := m.QueryProfile(mg.GameSlug, profileID)
		if err != nil {
			return fmt.Errorf("error listing mods: %w", err)
		}

		rows := [][]string{}
		for _, mod := range mods {
			enabled := "✗"
			if mod.Enabled {
				enabled = "✓"
			}

			version := ""
			source := "local"
			if mod.Variant == profile.VariantThunderstore {
				version = mod.Ident.Version()
				source = "thunderstore"
			}

			rows = append(rows, []string{
				fmt.Sprintf(" %s ", mod.FullName()),
				fmt.Sprintf(" %s ", version),
				fmt.Sprintf(" %s ", source),
				fmt.Sprintf(" %s ", enabled),
				fmt.Sprintf(" %s ", mod.UUID),
			})
		}

		t := table.New().
			Headers(" Mod ", " Version ", " Source ", " Enabled ", " UUID ").
			Rows(rows...)

		fmt.Println(t)

		return nil
	},
}

func init() {
	modsCmd.AddCommand(modsListCmd)
}
