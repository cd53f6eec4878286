package main

import (
	"errors"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/fcortes/goalcut/internal/config"
	"github.com/fcortes/goalcut/internal/watch"
)

// watchCmd creates the watch command: monitor a directory and transcribe
// every media file dropped into it, without the HTTP server.
func watchCmd() *cobra.Command {
	var (
		dir        string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a directory and analyze dropped media files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.WatchDir = dir
			}
			if cfg.WatchDir == "" {
				return errors.New("no watch directory: pass --dir or set GOALCUT_WATCH_DIR")
			}
			if err := os.MkdirAll(cfg.WatchDir, 0o755); err != nil {
				return err
			}

			logger := log.New(os.Stderr, "goalcut: ", log.LstdFlags)
			runner, _, err := buildRunner(cfg, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			err = watch.New(cfg.WatchDir, runner, watch.WithLogger(logger)).Run(ctx)
			runner.Wait()
			return err
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "directory to watch")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}
