package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var gamesFavoriteUnset bool

var gamesFavoriteCmd = &cobra.Command{
	Use:   "favorite <slug>",
	Short: "Mark a game as a favorite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		if err := m.FavoriteGame(ctx, args[0], !gamesFavoriteUnset); err != nil {
			return fmt.Errorf("error updating favorite: %w", err)
		}

		if gamesFavoriteUnset {
			fmt.Printf("Removed %q from favorites\n", args[0])
		} else {
			fmt.Printf("Added %q to favorites\n", args[0])
		}

		return nil
	},
}

func init() {
	gamesCmd.AddCommand(gamesFavoriteCmd)

	gamesFavoriteCmd.Flags().BoolVarP(&gamesFavoriteUnset, "unset", "u", false,
		"Remove the favorite mark instead of setting it")
}
