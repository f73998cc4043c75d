package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var gamesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List managed games",
	Long: `List every game gale manages, with its mod loader, install path, and
profile count. The active game is marked in the Active column.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		rows := [][]string{}
		for _, info := range m.GamesInfo() {
			active := ""
			if info.Active {
				active = "✓"
			}
			favorite := ""
			if info.Favorite {
				favorite = "★"
			}

			rows = append(rows, []string{
				fmt.Sprintf(" %d ", info.ID),
				fmt.Sprintf(" %s ", info.Slug),
				fmt.Sprintf(" %s ", info.Name),
				fmt.Sprintf(" %s ", info.Loader),
				fmt.Sprintf(" %s ", info.Path),
				fmt.Sprintf(" %d ", info.Profiles),
				fmt.Sprintf(" %s ", active),
				fmt.Sprintf(" %s ", favorite),
			})
		}

		t := table.New().
			Headers(" ID ", " Slug ", " Name ", " Loader ", " Path ", " Profiles ", " Active ", " Favorite ").
			Rows(rows...)

		fmt.Println(t)

		return nil
	},
}

func init() {
	gamesCmd.AddCommand(gamesListCmd)
}
