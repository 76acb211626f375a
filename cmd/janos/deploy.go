package main

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the built site",
	Long:  "Deploy builds the site in production mode and runs the configured deploy command.",
	RunE: func(cmd *cobra.Command, args []string) error {
		command, _ := cmd.Flags().GetString("command")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg, result, err := runBuild(cmd, "production", "")
		if err != nil {
			return err
		}
		printResult(cmd, result)

		if command == "" {
			command = deployCommand(cfg.Metadata)
		}
		if command == "" {
			return fmt.Errorf("no deploy command configured; set metadata.deploy.command or pass --command")
		}
		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "Would run: %s\n", command)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Running: %s\n", command)
		run := exec.CommandContext(cmd.Context(), "sh", "-c", command)
		run.Stdout = cmd.OutOrStdout()
		run.Stderr = cmd.ErrOrStderr()
		return run.Run()
	},
}

// deployCommand looks up the deploy command in the user metadata,
// accepting either a plain string or an object with a command key.
func deployCommand(metadata map[string]any) string {
	switch v := metadata["deploy"].(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["command"].(string); ok {
			return s
		}
	}
	return ""
}

func init() {
	deployCmd.Flags().String("command", "", "deploy command to run after the build")
	deployCmd.Flags().Bool("dry-run", false, "build and show the deploy command without running it")

	rootCmd.AddCommand(deployCmd)
}
