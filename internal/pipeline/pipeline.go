// Package pipeline drives submitted tasks through the processing stages:
// acquire, transcribe chunk by chunk, classify, and compile. One worker
// goroutine owns one task; a weighted semaphore bounds how many run at
// once. All status the outside world sees goes through the task store.
package pipeline

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/fcortes/goalcut/internal/acquire"
	"github.com/fcortes/goalcut/internal/task"
	"github.com/fcortes/goalcut/internal/transcript"
)

// Consumer-side contracts for the stage components. The concrete types in
// internal/media, internal/transcribe, internal/classify and
// internal/acquire satisfy these; tests substitute fakes.

// Acquirer resolves a remote URL into a local source.
type Acquirer interface {
	Acquire(ctx context.Context, url, taskID string) (*acquire.Source, error)
}

// Prober reports a media file's duration in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Extractor writes one audio chunk of the source to dest.
type Extractor interface {
	Extract(ctx context.Context, src string, start, duration float64, dest string) error
}

// Transcriber converts an audio file into timestamped segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]transcript.Segment, error)
}

// Classifier selects the interesting parts of a transcript.
type Classifier interface {
	FilterByGoal(ctx context.Context, script, goal string) ([]transcript.TimeRange, error)
	SolutionIndices(ctx context.Context, script string) ([]int, error)
}

// Compiler cuts time ranges out of a source video and joins them.
type Compiler interface {
	Compile(ctx context.Context, src string, duration float64, ranges []transcript.TimeRange, outPath string) error
}

// Deps bundles the stage components a Runner drives.
type Deps struct {
	Acquirer    Acquirer
	Prober      Prober
	Extractor   Extractor
	Transcriber Transcriber
	Classifier  Classifier
	Compiler    Compiler
}

// Default tunables.
const (
	DefaultChunkSeconds  = 60.0
	DefaultMaxDuration   = 300.0
	DefaultMaxConcurrent = 4
)

// Runner owns the worker pool and the per-task state machines.
type Runner struct {
	store *task.Store
	deps  Deps

	workDir       string
	chunkSeconds  float64
	maxDuration   float64 // 0 disables the cap
	sem           *semaphore.Weighted
	logger        *log.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// Option configures a Runner.
type Option func(*Runner)

// WithChunkSeconds sets the chunk length used for transcription.
func WithChunkSeconds(sec float64) Option {
	return func(r *Runner) {
		if sec > 0 {
			r.chunkSeconds = sec
		}
	}
}

// WithMaxDuration sets the source duration cap in seconds; 0 disables it.
func WithMaxDuration(sec float64) Option {
	return func(r *Runner) {
		if sec >= 0 {
			r.maxDuration = sec
		}
	}
}

// WithMaxConcurrent bounds the number of concurrently running tasks.
func WithMaxConcurrent(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithLogger sets the logger used for per-task progress lines.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner writing intermediate files under workDir.
func NewRunner(store *task.Store, workDir string, deps Deps, opts ...Option) *Runner {
	r := &Runner{
		store:        store,
		deps:         deps,
		workDir:      workDir,
		chunkSeconds: DefaultChunkSeconds,
		maxDuration:  DefaultMaxDuration,
		sem:          semaphore.NewWeighted(DefaultMaxConcurrent),
		logger:       log.Default(),
		cancels:      make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SubmitShorten registers a shorten task for a remote URL and starts its
// worker. The returned id is ready for polling immediately.
func (r *Runner) SubmitShorten(ctx context.Context, url, goal, identity string) string {
	t := r.store.Create(task.FlowShorten, identity)
	r.spawn(ctx, t.ID, func(taskCtx context.Context) {
		r.runShorten(taskCtx, t.ID, url, goal)
	})
	return t.ID
}

// SubmitAnalyze registers an analyze task for an already-staged local file
// and starts its worker.
func (r *Runner) SubmitAnalyze(ctx context.Context, path, identity string) string {
	t := r.store.Create(task.FlowAnalyze, identity)
	r.spawn(ctx, t.ID, func(taskCtx context.Context) {
		r.runAnalyze(taskCtx, t.ID, path)
	})
	return t.ID
}

// Task returns a snapshot of a task's current state.
func (r *Runner) Task(id string) (*task.Task, error) {
	return r.store.Get(id)
}

// Cancel requests cooperative cancellation of a running task. The worker
// notices at the next chunk boundary; an unknown or finished id is a no-op.
func (r *Runner) Cancel(id string) {
	r.mu.Lock()
	cancel, ok := r.cancels[id]
	r.mu.Unlock()
	if ok {
		cancel()
	}
}

// Wait blocks until all in-flight workers have finished. Used on shutdown
// after the submission surfaces are closed.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// spawn starts the worker goroutine for one task. The semaphore slot is
// acquired inside the goroutine so submission never blocks.
func (r *Runner) spawn(ctx context.Context, id string, run func(context.Context)) {
	taskCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancels[id] = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			cancel()
			r.mu.Lock()
			delete(r.cancels, id)
			r.mu.Unlock()
		}()

		if err := r.sem.Acquire(taskCtx, 1); err != nil {
			r.failTask(id, task.CategoryCancelled, err)
			return
		}
		defer r.sem.Release(1)

		run(taskCtx)
	}()
}
