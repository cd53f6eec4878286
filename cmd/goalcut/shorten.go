package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fcortes/goalcut/internal/config"
	"github.com/fcortes/goalcut/internal/task"
	"github.com/fcortes/goalcut/internal/transcribe"
	"github.com/fcortes/goalcut/internal/transcript"
)

// shortenCmd creates the shorten command: a one-shot local pipeline run
// without the HTTP server.
func shortenCmd() *cobra.Command {
	var (
		goal       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "shorten <video-url>",
		Short: "Shorten a video to the parts relevant to a goal",
		Long: `Download a video, transcribe it, and compile the segments relevant
to the goal into a shorter video in the work directory.

Example:
  goalcut shorten https://www.youtube.com/watch?v=abc123 --goal "set up a reverse proxy"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger := log.New(os.Stderr, "goalcut: ", log.LstdFlags)
			runner, store, err := buildRunner(cfg, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			id := runner.SubmitShorten(ctx, args[0], goal, "cli")
			fmt.Printf("Submitted task %s\n", id)

			t, err := pollUntilTerminal(ctx, store, id)
			if err != nil {
				return err
			}
			if t.Status == task.StatusFailed {
				return &taskFailure{
					category:   t.ErrorCategory,
					message:    t.Error,
					suggestion: t.Suggestion,
				}
			}

			switch {
			case t.Result.VideoPath != "":
				fmt.Printf("Done: %s\n", t.Result.VideoPath)
				fmt.Printf("Estimated transcription cost: $%.3f\n", transcribedCost(t.Segments))
			case t.Result.EmbedURL != "":
				fmt.Printf("Download was blocked; transcript recovered from captions.\n")
				fmt.Printf("Original video: %s\n", t.Result.EmbedURL)
				fmt.Print(renderTranscript(t.Result.Transcript))
			default:
				fmt.Println("Done: goal-relevant transcript (source had no video track).")
				fmt.Print(renderTranscript(t.Result.Transcript))
				fmt.Printf("Estimated transcription cost: $%.3f\n", transcribedCost(t.Segments))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&goal, "goal", "g", "", "what you want to learn from the video (required)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	_ = cmd.MarkFlagRequired("goal")
	return cmd
}

// renderTranscript formats a transcript for terminal output, one
// timestamped line per segment.
func renderTranscript(segments []transcript.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&b, "  [%s - %s] %s\n",
			transcript.Timestamp(seg.Start), transcript.Timestamp(seg.End), seg.Text)
	}
	return b.String()
}

// transcribedCost estimates what transcribing the source cost, taking the
// end of the last transcribed segment as the audio duration.
func transcribedCost(segments []transcript.Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	end := segments[len(segments)-1].End
	return transcribe.EstimateCost(time.Duration(end * float64(time.Second)))
}

// pollUntilTerminal watches a task until it completes or fails, printing
// status changes along the way.
func pollUntilTerminal(ctx context.Context, store *task.Store, id string) (*task.Task, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastStatus task.Status
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		t, err := store.Get(id)
		if err != nil {
			return nil, err
		}
		if t.Status != lastStatus {
			fmt.Printf("  %s (%d%%)\n", t.Status, t.Progress)
			lastStatus = t.Status
		}
		if t.Status.Terminal() {
			if t.Status == task.StatusCompleted && t.Result == nil {
				return nil, errors.New("completed task has no result")
			}
			return t, nil
		}
	}
}
