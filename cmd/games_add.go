package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var gamesAddCmd = &cobra.Command{
	Use:   "add <slug> <install-path>",
	Short: "Start managing a game",
	Long: `Register a game install with gale and make it the active game.

The slug must name a game from gale's supported-games catalog (see
` + "`gale games supported`" + `). A "Default" profile is created for games
managed for the first time.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		mg, err := m.EnsureGame(ctx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("error adding game: %w", err)
		}
		if err := m.SetActiveGame(ctx, args[0]); err != nil {
			return fmt.Errorf("error activating game: %w", err)
		}

		fmt.Printf("Managing %s (id=%d) with %d profile(s)\n",
			mg.GameSlug, mg.ID, len(mg.Profiles))

		return nil
	},
}

func init() {
	gamesCmd.AddCommand(gamesAddCmd)
}
