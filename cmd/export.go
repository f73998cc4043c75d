package cmd

import (
	"github.com/spf13/cobra"
)

var (
	exportGame    string
	exportProfile string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a profile for sharing",
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.PersistentFlags().StringVarP(&exportGame, "game", "g", "",
		"Game slug to operate on (defaults to the active game)")
	exportCmd.PersistentFlags().StringVarP(&exportProfile, "profile", "p", "",
		"Profile name or id to operate on (defaults to the active profile)")
}
