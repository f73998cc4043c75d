package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var configSetSection string

var configSetCmd = &cobra.Command{
	Use:   "set <file> <entry> <value>",
	Short: "Set a config entry's value",
	Long: `Set a config entry and rewrite the file.

For BepInEx .cfg files the --section flag selects the [Section] the entry
lives in. GDWeave .json files are flat; the entry is a top-level key and
--section is ignored.`,
	Args: cobra.ExactArgs(3),
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

		err = m.SetConfigEntry(mg.GameSlug, profileID, args[0],
			configSetSection, args[1], args[2])
		if err != nil {
			return fmt.Errorf("error setting config entry: %w", err)
		}

		fmt.Printf("Set %s = %s\n", args[1], args[2])

		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)

	configSetCmd.Flags().StringVarP(&configSetSection, "section", "s", "",
		"Config section the entry lives in (BepInEx files)")
}
