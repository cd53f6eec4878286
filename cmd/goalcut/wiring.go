package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fcortes/goalcut/internal/acquire"
	"github.com/fcortes/goalcut/internal/apierr"
	"github.com/fcortes/goalcut/internal/classify"
	"github.com/fcortes/goalcut/internal/config"
	"github.com/fcortes/goalcut/internal/media"
	"github.com/fcortes/goalcut/internal/pipeline"
	"github.com/fcortes/goalcut/internal/task"
	"github.com/fcortes/goalcut/internal/transcribe"
)

// taskFailure wraps a failed task's terminal state so the CLI can print
// the suggestion and pick the right exit code.
type taskFailure struct {
	category   task.ErrorCategory
	message    string
	suggestion string
}

func (e *taskFailure) Error() string {
	return fmt.Sprintf("task failed (%s): %s\n%s", e.category, e.message, e.suggestion)
}

// buildRunner resolves external binaries and the OpenAI client, then wires
// the stage components into a pipeline runner.
func buildRunner(cfg config.Config, logger *log.Logger) (*pipeline.Runner, *task.Store, error) {
	tc, err := media.ResolveToolchain()
	if err != nil {
		return nil, nil, err
	}
	ytdlp, err := acquire.ResolveYTDLP()
	if err != nil {
		// yt-dlp only matters for remote sources; the analyze flow works
		// without it. Warn and keep going with an empty path.
		logger.Printf("warning: %v (remote URLs will fail)", err)
		ytdlp = ""
	}
	client, err := transcribe.SharedClient()
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create work dir: %w", err)
	}

	store := task.NewStore()
	deps := pipeline.Deps{
		Acquirer:    acquire.NewAcquirer(ytdlp, cfg.WorkDir),
		Prober:      media.NewProber(tc),
		Extractor:   media.NewExtractor(tc),
		Transcriber: transcribe.NewOpenAITranscriber(client, transcribe.WithRetry(apierr.DefaultRetry)),
		Classifier:  classify.NewOpenAIClassifier(client, classify.WithModel(cfg.ChatModel)),
		Compiler:    media.NewCompiler(tc),
	}
	runner := pipeline.NewRunner(store, cfg.WorkDir, deps,
		pipeline.WithChunkSeconds(cfg.ChunkSeconds),
		pipeline.WithMaxDuration(cfg.MaxDurationSeconds),
		pipeline.WithMaxConcurrent(cfg.MaxConcurrent),
		pipeline.WithLogger(logger),
	)
	return runner, store, nil
}
