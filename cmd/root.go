package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/galeproject/gale/internal/paths"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gale",
	Short: "gale: Thunderstore mod manager",
	Long: `gale is a command line mod manager for games that use file-based mod
loaders (BepInEx, MelonLoader, GDWeave, Northstar, and friends). It keeps
mods in named profiles, installs them from the Thunderstore registry or
local files, and can export and import profiles for sharing.`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is $XDG_CONFIG_HOME/gale/config.toml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"enable verbose output",
	)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("thunderstore_host", "thunderstore.io")
	viper.SetDefault("offline", false)
	viper.SetDefault("auth_token", "")

	viper.SetEnvPrefix("gale")
	viper.AutomaticEnv()

	if cfgFile != "" {
		// User explicitly provided a config file: it must work.
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("toml")

		if err := viper.ReadInConfig(); err != nil {
			cobra.CheckErr(err)
		}

		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file: ",
				viper.ConfigFileUsed())
		}

		return
	}

	defaultPath := paths.ConfigFile()

	if _, err := os.Stat(defaultPath); errors.Is(err, os.ErrNotExist) {
		return // default config file doesn't exist -- use defaults
	}

	viper.SetConfigFile(defaultPath)
	viper.SetConfigType("toml")

	if err := viper.ReadInConfig(); err != nil {
		// missing config file is fine -- use the built-in defaults
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		// parse/permission errors should fail loudly
		cobra.CheckErr(err)
		return
	}

	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file: ",
			viper.ConfigFileUsed())
	}
}
