package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/galeproject/gale/internal/config"
)

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List config files found in a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		mg, err := resolveGame(m, configGame)
		if err != nil {
			return err
		}
		profileID, err := resolveProfile(mg, configProfile)
		if err != nil {
			return err
		}

		files, err := m.GetConfigFiles(mg.GameSlug, profileID)
		if err != nil {
			return fmt.Errorf("error scanning config files: %w", err)
		}

		rows := [][]string{}
		for _, f := range files {
			status := string(f.Kind)
			if f.Kind == config.KindError && f.Err != nil {
				status = fmt.Sprintf("error: %v", f.Err)
			}

			rows = append(rows, []string{
				fmt.Sprintf(" %s ", f.DisplayName),
				fmt.Sprintf(" %s ", f.RelativePath),
				fmt.Sprintf(" %s ", status),
			})
		}

		t := table.New().
			Headers(" Name ", " Path ", " Format ").
			Rows(rows...)

		fmt.Println(t)

		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd)
}
