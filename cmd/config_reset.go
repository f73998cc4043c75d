package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var configResetSection string

var configResetCmd = &cobra.Command{
	Use:   "reset <file> <entry>",
	Short: "Reset a config entry to its default value",
	Long: `Reset a BepInEx config entry to the default value recorded in the
file's metadata comments. Entries without metadata (and GDWeave entries,
which carry no defaults) cannot be reset.`,
	Args: cobra.ExactArgs(2),
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

		err = m.ResetConfigEntry(mg.GameSlug, profileID, args[0],
			configResetSection, args[1])
		if err != nil {
			return fmt.Errorf("error resetting config entry: %w", err)
		}

		fmt.Printf("Reset %s to its default\n", args[1])

		return nil
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)

	configResetCmd.Flags().StringVarP(&configResetSection, "section", "s", "",
		"Config section the entry lives in")
}
