// Package cmd is for command line interactions with the annotation engine
package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "vadr",
	Short: `Classify and annotate viral sequences against reference models.
Reports alerts for unexpected or divergent characteristics and a
pass/fail verdict per sequence`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

// initSettings reads the optional YAML settings file into viper.
// Thresholds not present there (or on the command line) fall through
// to the built-in defaults.
func initSettings() {
	settings, err := RootCmd.PersistentFlags().GetString("settings")
	if err != nil || settings == "" {
		return
	}
	viper.SetConfigFile(settings)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("failed to read %s: %v", settings, err)
	}
}

func init() {
	cobra.OnInitialize(initSettings)

	RootCmd.PersistentFlags().StringP("settings", "s", "", "path to a YAML settings file with threshold overrides")
}
