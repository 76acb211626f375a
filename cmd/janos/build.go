package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aellingwood/janos/internal/config"
	"github.com/aellingwood/janos/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the site",
	Long:  "Build runs the configured pipeline over the source tree and writes the output directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		dest, _ := cmd.Flags().GetString("destination")

		_, result, err := runBuild(cmd, mode, dest)
		if result != nil {
			printResult(cmd, result)
		}
		return err
	},
}

// runBuild loads the configuration fresh, assembles the pipeline, and
// runs a full build. modeOverride and destOverride, when non-empty,
// take precedence over the config file.
func runBuild(cmd *cobra.Command, modeOverride, destOverride string) (*config.Config, *pipeline.Result, error) {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if modeOverride != "" {
		cfg.Mode = modeOverride
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	log := pipeline.NewLogger(cmd.ErrOrStderr(), verbose || cfg.Mode != pipeline.ModeProduction)
	p, err := config.BuildPipeline(cfg, nil, log)
	if err != nil {
		return cfg, nil, err
	}

	outputDir := cfg.Site.OutputDir
	if destOverride != "" {
		outputDir = destOverride
	}
	result, err := p.Build(cmd.Context(), pipeline.BuildOptions{
		SourceDir:  cfg.Site.SourceDir,
		LayoutsDir: cfg.Site.LayoutsDir,
		OutputDir:  outputDir,
	})
	return cfg, result, err
}

func printResult(cmd *cobra.Command, result *pipeline.Result) {
	fmt.Fprintf(cmd.OutOrStdout(), "Build complete: %d files processed, %d written in %s\n",
		result.FilesProcessed, result.FilesOutput, result.Duration.Round(time.Millisecond))
	if n := len(result.Warnings); n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  %d warning(s)\n", n)
	}
}

func init() {
	buildCmd.Flags().String("mode", "", "override build mode (development or production)")
	buildCmd.Flags().StringP("destination", "d", "", "override output directory")

	rootCmd.AddCommand(buildCmd)
}
