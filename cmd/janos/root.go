package main

import (
	"github.com/spf13/cobra"

	"github.com/aellingwood/janos/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "janos",
	Short: "A pluggable static site generator",
	Long:  "Janos runs your content through a configurable pipeline of stages and emits a static website.",
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultFilename, "path to config file")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
