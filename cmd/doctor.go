package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/galeproject/gale/internal/paths"
	"github.com/galeproject/gale/internal/store"
)

var (
	doctorOKStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	doctorWarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on gale's state",
	Long: `Run a read-only health check to confirm gale can operate safely.

Doctor verifies:
  - Database is present and usable, and reports pending migrations
  - Every profile directory still exists on disk
  - Every game's active-profile reference points at a real profile
  - Every installed mod's package cache entry is still present

Doctor does not modify profiles or game installs.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := store.EnsureExists(paths.StateDBPath()); err != nil {
			return err
		}

		m, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		findings, err := m.Doctor(ctx)
		if err != nil {
			return fmt.Errorf("error running health checks: %w", err)
		}

		problems := 0
		for _, f := range findings {
			mark := doctorOKStyle.Render("ok")
			if !f.OK {
				mark = doctorWarnStyle.Render("!!")
				problems++
			}
			fmt.Printf("[%s] %s: %s\n", mark, f.Check, f.Message)
		}

		if problems > 0 {
			return fmt.Errorf("%d problem(s) found", problems)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
