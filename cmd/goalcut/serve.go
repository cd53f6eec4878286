package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/fcortes/goalcut/internal/config"
	"github.com/fcortes/goalcut/internal/server"
	"github.com/fcortes/goalcut/internal/watch"
)

// serveCmd creates the serve command.
func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Tasks are submitted with POST /api/process (remote URL + goal) or
POST /api/analyze (media upload) and polled with GET /api/status/{id}.
When a watch directory is configured, media files dropped there are
submitted automatically.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger := log.New(os.Stderr, "goalcut: ", log.LstdFlags)
			runner, _, err := buildRunner(cfg, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if cfg.WatchDir != "" {
				if err := os.MkdirAll(cfg.WatchDir, 0o755); err != nil {
					return err
				}
				w := watch.New(cfg.WatchDir, runner, watch.WithLogger(logger))
				go func() {
					if err := w.Run(ctx); err != nil && ctx.Err() == nil {
						logger.Printf("watcher stopped: %v", err)
					}
				}()
			}

			srv := server.New(ctx, runner, cfg.WorkDir,
				server.WithMaxUploadBytes(cfg.MaxUploadBytes()),
				server.WithLogger(logger),
			)
			err = srv.ListenAndServe(ctx, cfg.Addr)

			// Let in-flight pipelines finish their cleanup before exiting.
			runner.Wait()
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}
