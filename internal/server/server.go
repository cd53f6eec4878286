// Package server exposes the pipeline over HTTP: submit a shorten task,
// upload a file for analysis, poll status, and fetch the compiled video.
// Submission always answers 202 with a task id; outcomes are observed by
// polling, never returned synchronously.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/fcortes/goalcut/internal/task"
)

// Runner is the pipeline surface the API needs; *pipeline.Runner
// satisfies it.
type Runner interface {
	SubmitShorten(ctx context.Context, url, goal, identity string) string
	SubmitAnalyze(ctx context.Context, path, identity string) string
	Cancel(id string)
	Task(id string) (*task.Task, error)
}

// Server is the HTTP API.
type Server struct {
	runner         Runner
	workDir        string
	maxUploadBytes int64
	logger         *log.Logger

	// baseCtx parents the per-task worker contexts so shutdown can reach
	// running pipelines.
	baseCtx context.Context
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMaxUploadBytes caps accepted upload sizes.
func WithMaxUploadBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Server around a pipeline runner. Uploads are staged under
// workDir before submission.
func New(ctx context.Context, runner Runner, workDir string, opts ...ServerOption) *Server {
	s := &Server{
		runner:         runner,
		workDir:        workDir,
		maxUploadBytes: 500 << 20,
		logger:         log.Default(),
		baseCtx:        ctx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/process", s.handleProcess)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/status/{id}", s.handleStatus)
	mux.HandleFunc("GET /api/video/{id}", s.handleVideo)
	mux.HandleFunc("POST /api/cancel/{id}", s.handleCancel)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return withCORS(withIdentity(mux))
}

// ListenAndServe runs the API until ctx is cancelled, then drains open
// connections. Running pipeline workers are not waited for here; the
// caller owns Runner shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Printf("listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
