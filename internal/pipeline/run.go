package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fcortes/goalcut/internal/acquire"
	"github.com/fcortes/goalcut/internal/media"
	"github.com/fcortes/goalcut/internal/task"
	"github.com/fcortes/goalcut/internal/transcript"
)

// Progress checkpoints. Transcription owns the span between acquired and
// transcribed, advancing proportionally to completed chunks.
const (
	progressAcquiring   = 10
	progressTranscribed = 85
	progressClassifying = 90
	progressCompiling   = 95
)

// runShorten drives the shorten flow: download, transcribe, ask the
// classifier for goal-relevant ranges, compile them into a short video.
func (r *Runner) runShorten(ctx context.Context, id, url, goal string) {
	r.setStage(id, task.StatusAcquiring, progressAcquiring)

	src, err := r.deps.Acquirer.Acquire(ctx, url, id)
	if err != nil {
		r.failTask(id, categorize(err), err)
		return
	}
	if src.Kind == acquire.KindCaptions {
		r.completeCaptions(id, src)
		return
	}
	defer os.Remove(src.Path)

	merged, duration, ok := r.transcribeStage(ctx, id, src.Path)
	if !ok {
		return
	}
	if len(merged) == 0 {
		r.failTask(id, task.CategoryNoSegments,
			errors.New("transcription produced no usable segments"))
		return
	}

	r.setStage(id, task.StatusClassifying, progressClassifying)
	ranges, err := r.deps.Classifier.FilterByGoal(ctx, transcript.Script(merged), goal)
	if err != nil {
		if ctx.Err() != nil {
			r.failTask(id, task.CategoryCancelled, ctx.Err())
			return
		}
		r.failTask(id, task.CategoryNoSegments, fmt.Errorf("classification failed: %w", err))
		return
	}
	if len(ranges) == 0 {
		r.failTask(id, task.CategoryNoSegments,
			errors.New("no segments relevant to the goal were found"))
		return
	}

	if src.Kind == acquire.KindAudio {
		// Audio-only download: nothing to cut video from, but the
		// goal-filtered transcript is still worth returning.
		r.complete(id, &task.Result{
			Transcript:     transcript.Overlapping(merged, ranges),
			TranscriptOnly: true,
		})
		return
	}

	r.setStage(id, task.StatusCompiling, progressCompiling)
	outDir := filepath.Join(r.workDir, "output")
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		r.failTask(id, task.CategoryInternal, err)
		return
	}
	outPath := filepath.Join(outDir, id+"-short.mp4")
	if err := r.deps.Compiler.Compile(ctx, src.Path, duration, ranges, outPath); err != nil {
		if ctx.Err() != nil {
			r.failTask(id, task.CategoryCancelled, ctx.Err())
			return
		}
		r.failTask(id, categorize(err), err)
		return
	}

	r.complete(id, &task.Result{VideoPath: outPath})
}

// runAnalyze drives the analyze flow for an already-staged local file:
// transcribe, then ask the classifier which segments present the solution.
// Classifier trouble degrades to an empty index list instead of failing.
func (r *Runner) runAnalyze(ctx context.Context, id, path string) {
	r.setStage(id, task.StatusAcquiring, progressAcquiring)

	merged, _, ok := r.transcribeStage(ctx, id, path)
	if !ok {
		return
	}

	r.setStage(id, task.StatusClassifying, progressClassifying)
	var indices []int
	if len(merged) > 0 {
		got, err := r.deps.Classifier.SolutionIndices(ctx, transcript.NumberedScript(merged))
		if err != nil {
			if ctx.Err() != nil {
				r.failTask(id, task.CategoryCancelled, ctx.Err())
				return
			}
			r.logger.Printf("task %s: solution classification failed, returning transcript only: %v", id, err)
		} else {
			for _, idx := range got {
				if idx < len(merged) {
					indices = append(indices, idx)
				}
			}
		}
	}

	r.complete(id, &task.Result{
		Transcript:      merged,
		SolutionIndices: indices,
		TranscriptOnly:  true,
	})
}

// completeCaptions finishes a task whose acquisition fell back to the
// platform's published captions: the transcript is already final, so the
// intermediate stages are walked through without doing their work.
func (r *Runner) completeCaptions(id string, src *acquire.Source) {
	r.setStage(id, task.StatusTranscribing, progressTranscribed)
	_ = r.store.Update(id, func(t *task.Task) {
		t.Segments = src.Segments
	})
	r.setStage(id, task.StatusClassifying, progressClassifying)
	r.complete(id, &task.Result{
		Transcript:     src.Segments,
		EmbedURL:       src.EmbedURL,
		TranscriptOnly: true,
	})
}

// transcribeStage probes, chunks, and transcribes the source, publishing
// partial segments and progress after every chunk. It returns ok=false
// after recording a failure on the task. A single bad chunk is logged and
// skipped; the transcript just misses that window.
func (r *Runner) transcribeStage(ctx context.Context, id, path string) ([]transcript.Segment, float64, bool) {
	duration, err := r.deps.Prober.Duration(ctx, path)
	if err != nil {
		r.failTask(id, categorize(err), err)
		return nil, 0, false
	}
	if r.maxDuration > 0 && duration > r.maxDuration {
		r.failTask(id, task.CategoryDurationLimit,
			fmt.Errorf("%w: %.0fs exceeds the %.0fs cap", acquire.ErrDurationExceeded, duration, r.maxDuration))
		return nil, 0, false
	}

	r.setStage(id, task.StatusTranscribing, progressAcquiring)

	chunkDir, err := os.MkdirTemp(r.workDir, id+"-chunks-*")
	if err != nil {
		r.failTask(id, task.CategoryInternal, err)
		return nil, 0, false
	}
	defer os.RemoveAll(chunkDir)

	chunks := media.PlanChunks(duration, r.chunkSeconds)
	var (
		results [][]transcript.Segment
		offsets []float64
		merged  []transcript.Segment
	)
	for _, c := range chunks {
		if ctx.Err() != nil {
			r.failTask(id, task.CategoryCancelled, ctx.Err())
			return nil, 0, false
		}

		dest := filepath.Join(chunkDir, fmt.Sprintf("chunk_%03d.wav", c.Index))
		if err := r.deps.Extractor.Extract(ctx, path, c.Start, c.Duration, dest); err != nil {
			if ctx.Err() != nil {
				r.failTask(id, task.CategoryCancelled, ctx.Err())
				return nil, 0, false
			}
			r.logger.Printf("task %s: chunk %d extraction failed, skipping: %v", id, c.Index, err)
			continue
		}

		segs, err := r.deps.Transcriber.Transcribe(ctx, dest)
		os.Remove(dest)
		if err != nil {
			if ctx.Err() != nil {
				r.failTask(id, task.CategoryCancelled, ctx.Err())
				return nil, 0, false
			}
			r.logger.Printf("task %s: chunk %d transcription failed, skipping: %v", id, c.Index, err)
			continue
		}

		results = append(results, segs)
		offsets = append(offsets, c.Start)
		merged = transcript.Merge(results, offsets)

		progress := progressAcquiring +
			(progressTranscribed-progressAcquiring)*(c.Index+1)/len(chunks)
		snapshot := merged
		_ = r.store.Update(id, func(t *task.Task) {
			t.Segments = snapshot
			if progress > t.Progress {
				t.Progress = progress
			}
		})
	}

	return merged, duration, true
}

// setStage advances a task's status, guarded by the transition table, and
// bumps progress to at least the stage checkpoint.
func (r *Runner) setStage(id string, status task.Status, progress int) {
	_ = r.store.Update(id, func(t *task.Task) {
		if !task.CanTransition(t.Status, status) {
			return
		}
		t.Status = status
		if progress > t.Progress {
			t.Progress = progress
		}
	})
}

// complete marks a task successful. Result and status land in one atomic
// update so pollers never see one without the other.
func (r *Runner) complete(id string, result *task.Result) {
	r.logger.Printf("task %s completed", id)
	_ = r.store.Update(id, func(t *task.Task) {
		if t.Status.Terminal() {
			return
		}
		t.Status = task.StatusCompleted
		t.Progress = 100
		t.Result = result
	})
}

// failTask records a terminal failure with its category and suggestion.
func (r *Runner) failTask(id string, cat task.ErrorCategory, err error) {
	r.logger.Printf("task %s failed (%s): %v", id, cat, err)
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	_ = r.store.Update(id, func(t *task.Task) {
		if t.Status.Terminal() {
			return
		}
		t.Status = task.StatusFailed
		t.Progress = 0
		t.Error = msg
		t.ErrorCategory = cat
		t.Suggestion = suggestionFor(cat)
	})
}

// categorize maps component sentinel errors to task error categories.
func categorize(err error) task.ErrorCategory {
	switch {
	case errors.Is(err, media.ErrToolchainUnavailable):
		return task.CategoryToolchain
	case errors.Is(err, acquire.ErrDownloadFailed),
		errors.Is(err, acquire.ErrInvalidURL),
		errors.Is(err, acquire.ErrCaptionsUnavailable):
		return task.CategoryDownload
	case errors.Is(err, acquire.ErrDurationExceeded):
		return task.CategoryDurationLimit
	case errors.Is(err, acquire.ErrFileTooLarge),
		errors.Is(err, acquire.ErrUnsupportedType),
		errors.Is(err, media.ErrUnreadableMedia):
		return task.CategoryFormat
	case errors.Is(err, media.ErrNoValidRanges):
		return task.CategoryNoSegments
	case errors.Is(err, context.Canceled):
		return task.CategoryCancelled
	default:
		return task.CategoryInternal
	}
}

// suggestionFor returns the human-actionable hint shown to pollers,
// distinguishing operator-fixable problems from user-fixable ones.
func suggestionFor(cat task.ErrorCategory) string {
	switch cat {
	case task.CategoryToolchain:
		return "FFmpeg is not installed on the server. Contact the administrator."
	case task.CategoryDownload:
		return "The video could not be downloaded. Check the URL, or try a different video."
	case task.CategoryDurationLimit:
		return "The video is too long. Try a shorter video or raise the duration limit."
	case task.CategoryFormat:
		return "The file format is not supported. Upload a common video or audio format such as mp4, m4a, or wav."
	case task.CategoryNoSegments:
		return "No relevant segments were found. Try rephrasing the goal or using a different video."
	case task.CategoryCancelled:
		return "The task was cancelled before it finished."
	default:
		return "An internal error occurred. Try again, and contact the administrator if it persists."
	}
}
