package cmd

import (
	"github.com/spf13/cobra"
)

var (
	configGame    string
	configProfile string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit mod config files in a profile",
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.PersistentFlags().StringVarP(&configGame, "game", "g", "",
		"Game slug to operate on (defaults to the active game)")
	configCmd.PersistentFlags().StringVarP(&configProfile, "profile", "p", "",
		"Profile name or id to operate on (defaults to the active profile)")
}
