// Package cmd is for command line interactions with the darn application
package cmd

import (
	"log"
	"os"

	"github.com/darn-seq/darn/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use: "darn",
	Short: `Curate genome assemblies: index and fetch sequences, rank overlap
candidates, project coordinates across alignments, and merge sequences
with a junction audit trail`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func init() {
	// settings is an optional parameter for a settings file (fields mirror config.Config)
	RootCmd.PersistentFlags().StringP("settings", "s", config.RootSettingsFile, "curation settings")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "whether to log extra detail to stdout")
	viper.BindPFlag("settings", RootCmd.PersistentFlags().Lookup("settings"))
	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))

	cobra.OnInitialize(initSettings)
}

// initSettings loads the optional settings file named by --settings.
func initSettings() {
	file := viper.GetString("settings")
	if file == "" {
		return
	}
	if _, err := os.Stat(file); err != nil {
		// settings file is optional
		return
	}

	viper.SetConfigFile(file)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("failed to read settings from %s: %v", file, err)
	}
}
