package cmd

import (
	"github.com/spf13/cobra"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "Manage which games gale tracks",
}

func init() {
	rootCmd.AddCommand(gamesCmd)
}
