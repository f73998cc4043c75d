package cmd

import (
	"github.com/spf13/cobra"
)

var profilesGame string

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage a game's mod profiles",
}

func init() {
	rootCmd.AddCommand(profilesCmd)

	profilesCmd.PersistentFlags().StringVarP(&profilesGame, "game", "g", "",
		"Game slug to operate on (defaults to the active game)")
}
