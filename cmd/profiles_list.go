package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles for a game",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		mg, err := resolveGame(m, profilesGame)
		if err != nil {
			return err
		}

		infos, err := m.GetProfileInfo(mg.GameSlug)
		if err != nil {
			return fmt.Errorf("error listing profiles: %w", err)
		}

		rows := [][]string{}
		for _, info := range infos {
			active := ""
			if info.Active {
				active = "✓"
			}

			rows = append(rows, []string{
				fmt.Sprintf(" %d ", info.ID),
				fmt.Sprintf(" %s ", info.Name),
				fmt.Sprintf(" %d ", info.Mods),
				fmt.Sprintf(" %s ", active),
				fmt.Sprintf(" %s ", info.Path),
			})
		}

		t := table.New().
			Headers(" ID ", " Name ", " Mods ", " Active ", " Path ").
			Rows(rows...)

		fmt.Println(t)

		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesListCmd)
}
