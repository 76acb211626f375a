package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aellingwood/janos/internal/config"
)

const starterConfig = `{
  "$schema": "https://janos.dev/schema.json",
  "site": {
    "title": "My Site",
    "baseUrl": "https://example.com",
    "description": ""
  },
  "mode": "development",
  "pipeline": [
    "markdown",
    "publish",
    "collections",
    "excerpts",
    "tags",
    "permalinks",
    "coordinate",
    "layouts"
  ]
}
`

const starterPost = `---
title: Hello, world
date: 2026-01-01
layout: default
---

Welcome to your new site.
`

const starterLayout = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{ title }} | {{ site.title }}</title>
</head>
<body>
  <main>{{ contents }}</main>
</body>
</html>
`

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Scaffold a new site",
	Long:  "Init creates the source and layouts directories and a starter config file.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		cfgPath := filepath.Join(root, config.DefaultFilename)
		if _, err := os.Stat(cfgPath); err == nil {
			return fmt.Errorf("%s already exists", cfgPath)
		}

		files := map[string]string{
			cfgPath: starterConfig,
			filepath.Join(root, config.DefaultSourceDir, "index.md"):       starterPost,
			filepath.Join(root, config.DefaultLayoutsDir, "default.html"): starterLayout,
		}
		for path, contents := range files {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
