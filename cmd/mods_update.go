package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var modsUpdateCheck bool

var modsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a profile's mods to their latest versions",
	Long: `Update every outdated Thunderstore mod in a profile to the latest
version in the registry, skipping mods whose updates were ignored with
` + "`gale mods ignore-update`" + `. With --check, only report what would
be updated.`,
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

		available, err := m.CheckUpdates(mg.GameSlug, profileID)
		if err != nil {
			return fmt.Errorf("error checking updates: %w", err)
		}

		if modsUpdateCheck {
			rows := [][]string{}
			for _, a := range available {
				ignored := ""
				if a.Ignored {
					ignored = "✓"
				}
				rows = append(rows, []string{
					fmt.Sprintf(" %s ", a.FullName),
					fmt.Sprintf(" %s ", a.Current.Version()),
					fmt.Sprintf(" %s ", a.Latest.Version()),
					fmt.Sprintf(" %s ", ignored),
				})
			}

			t := table.New().
				Headers(" Mod ", " Installed ", " Latest ", " Ignored ").
				Rows(rows...)

			fmt.Println(t)

			return nil
		}

		pending := 0
		for _, a := range available {
			if !a.Ignored {
				pending++
			}
		}

		if pending == 0 {
			fmt.Println("Everything is up to date")
			return nil
		}

		if err := m.UpdateMods(ctx, mg.GameSlug, profileID); err != nil {
			return fmt.Errorf("error updating mods: %w", err)
		}

		fmt.Printf("Updated %d mod(s)\n", pending)

		return nil
	},
}

func init() {
	modsCmd.AddCommand(modsUpdateCmd)

	modsUpdateCmd.Flags().BoolVarP(&modsUpdateCheck, "check", "c", false,
		"Only report available updates, don't install them")
}
