package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var gamesSetActiveCmd = &cobra.Command{
	Use:   "set-active <slug>",
	Short: "Set the active game",
	Long: `Make a managed game the active one. Commands that take no --game flag
operate on the active game.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		if err := m.SetActiveGame(ctx, args[0]); err != nil {
			return fmt.Errorf("error setting active game: %w", err)
		}

		fmt.Printf("Active game is now %q\n", args[0])

		return nil
	},
}

func init() {
	gamesCmd.AddCommand(gamesSetActiveCmd)
}
