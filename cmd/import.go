package cmd

import (
	"github.com/spf13/cobra"
)

var (
	importGame        string
	importProfileName string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import shared profiles and local mods",
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.PersistentFlags().StringVarP(&importGame, "game", "g", "",
		"Game slug to import into (defaults to the active game)")
}
