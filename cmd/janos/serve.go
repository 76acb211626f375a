package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aellingwood/janos/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the development server",
	Long:  "Serve builds the site, serves the output directory, and rebuilds on changes with live reload.",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		bind, _ := cmd.Flags().GetString("bind")
		noLiveReload, _ := cmd.Flags().GetBool("no-live-reload")
		mode, _ := cmd.Flags().GetString("mode")

		cfg, result, err := runBuild(cmd, mode, "")
		if err != nil {
			return fmt.Errorf("initial build failed: %w", err)
		}
		printResult(cmd, result)

		srv := server.New(server.Options{
			Bind:       bind,
			Port:       port,
			OutputDir:  cfg.Site.OutputDir,
			LiveReload: !noLiveReload,
		})

		configPath, _ := cmd.Root().PersistentFlags().GetString("config")
		watchPaths := []string{
			cfg.Site.SourceDir,
			cfg.Site.LayoutsDir,
			configPath,
		}
		watcher := server.NewWatcher(watchPaths, 100*time.Millisecond, func() {
			log.Println("Change detected, rebuilding...")
			// A fresh pipeline per rebuild keeps derived metadata from
			// leaking between runs.
			_, rebuilt, err := runBuild(cmd, mode, "")
			if err != nil {
				log.Printf("Rebuild failed: %v", err)
				return
			}
			log.Printf("Rebuild complete: %d files in %s",
				rebuilt.FilesOutput, rebuilt.Duration.Round(time.Millisecond))
			srv.NotifyReload()
		})
		srv.SetWatcher(watcher)

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			fmt.Fprintln(cmd.OutOrStdout(), "\nShutting down...")
			cancel()
		}()

		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at http://%s:%d\n", cfg.Site.OutputDir, bind, port)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "server port")
	serveCmd.Flags().String("bind", "localhost", "bind address")
	serveCmd.Flags().Bool("no-live-reload", false, "disable live reload")
	serveCmd.Flags().String("mode", "development", "build mode for the watched builds")

	rootCmd.AddCommand(serveCmd)
}
