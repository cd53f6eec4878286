// Package watch monitors a drop directory and submits every media file
// that appears as an analyze task. Meant for batch use: drop recordings in
// a folder, poll the API for transcripts.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Submitter is the pipeline surface the watcher needs.
type Submitter interface {
	SubmitAnalyze(ctx context.Context, path, identity string) string
}

// mediaExts are the file extensions the watcher picks up.
var mediaExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
	".m4v":  true,
	".m4a":  true,
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
}

// IsMediaFile reports whether the path has a watched media extension.
func IsMediaFile(path string) bool {
	return mediaExts[strings.ToLower(filepath.Ext(path))]
}

// Watcher submits dropped media files for analysis.
type Watcher struct {
	dir       string
	submitter Submitter
	logger    *log.Logger

	// settleDelay is how long a file's size must hold still before it is
	// considered fully written.
	settleDelay time.Duration
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets the watcher's logger.
func WithLogger(l *log.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithSettleDelay overrides the write-settle delay (for testing).
func WithSettleDelay(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.settleDelay = d
		}
	}
}

// New creates a Watcher over dir.
func New(dir string, submitter Submitter, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:         dir,
		submitter:   submitter,
		logger:      log.Default(),
		settleDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches the directory until ctx is cancelled. Only create events for
// media files trigger submission; anything else is ignored.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Printf("watching %s for media files", w.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) || !IsMediaFile(event.Name) {
				continue
			}
			if err := w.waitSettled(ctx, event.Name); err != nil {
				w.logger.Printf("skipping %s: %v", event.Name, err)
				continue
			}
			id := w.submitter.SubmitAnalyze(ctx, event.Name, "watch")
			w.logger.Printf("submitted %s as task %s", filepath.Base(event.Name), id)

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Printf("watcher error: %v", err)
		}
	}
}

// waitSettled waits until the file's size stops changing, so a partially
// copied file is not submitted mid-write.
func (w *Watcher) waitSettled(ctx context.Context, path string) error {
	var lastSize int64 = -1
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.settleDelay):
		}

		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.Size() == lastSize {
			return nil
		}
		lastSize = info.Size()
	}
}
