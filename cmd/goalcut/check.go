package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fcortes/goalcut/internal/acquire"
	"github.com/fcortes/goalcut/internal/config"
	"github.com/fcortes/goalcut/internal/media"
	"github.com/fcortes/goalcut/internal/transcribe"
)

// checkCmd creates the check command: verify every external requirement
// before running a pipeline.
func checkCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify external tools and credentials",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			var firstErr error

			tc, err := media.ResolveToolchain()
			if err != nil {
				fmt.Printf("ffmpeg/ffprobe:  MISSING\n\n%s\n\n", media.InstallInstructions())
				firstErr = err
			} else {
				fmt.Printf("ffmpeg:          %s\n", tc.FFmpeg)
				fmt.Printf("ffprobe:         %s\n", tc.FFprobe)
			}

			if ytdlp, err := acquire.ResolveYTDLP(); err != nil {
				fmt.Printf("yt-dlp:          MISSING (remote URLs will fail; pip install yt-dlp)\n")
			} else {
				fmt.Printf("yt-dlp:          %s\n", ytdlp)
			}

			if os.Getenv(transcribe.EnvAPIKey) == "" {
				fmt.Printf("OPENAI_API_KEY:  NOT SET\n")
				if firstErr == nil {
					firstErr = transcribe.ErrAPIKeyMissing
				}
			} else {
				fmt.Printf("OPENAI_API_KEY:  set\n")
			}

			if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
				fmt.Printf("work dir:        NOT WRITABLE (%v)\n", err)
				if firstErr == nil {
					firstErr = err
				}
			} else {
				fmt.Printf("work dir:        %s\n", cfg.WorkDir)
			}

			if firstErr != nil {
				return fmt.Errorf("system check failed: %w", firstErr)
			}
			fmt.Println("\nAll checks passed.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}
