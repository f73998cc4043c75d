package cmd

import (
	"github.com/spf13/cobra"
)

var (
	modsGame    string
	modsProfile string
)

var modsCmd = &cobra.Command{
	Use:   "mods",
	Short: "Install and manage mods in a profile",
}

func init() {
	rootCmd.AddCommand(modsCmd)

	modsCmd.PersistentFlags().StringVarP(&modsGame, "game", "g", "",
		"Game slug to operate on (defaults to the active game)")
	modsCmd.PersistentFlags().StringVarP(&modsProfile, "profile", "p", "",
		"Profile name or id to operate on (defaults to the active profile)")
}
