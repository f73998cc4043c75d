package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var gamesSupportedCmd = &cobra.Command{
	Use:   "supported",
	Short: "List games gale knows how to mod",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		rows := [][]string{}
		for _, g := range m.Catalog().All() {
			rows = append(rows, []string{
				fmt.Sprintf(" %s ", g.Slug),
				fmt.Sprintf(" %s ", g.Name),
				fmt.Sprintf(" %s ", g.ModLoader.Kind),
			})
		}

		t := table.New().
			Headers(" Slug ", " Name ", " Loader ").
			Rows(rows...)

		fmt.Println(t)

		return nil
	},
}

func init() {
	gamesCmd.AddCommand(gamesSupportedCmd)
}
