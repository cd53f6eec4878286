package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Prober reports source media durations via ffprobe metadata inspection.
type Prober struct {
	ffprobe string
	cmd     commandRunner
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProberRunner sets the command runner (for testing).
func WithProberRunner(r commandRunner) ProberOption {
	return func(p *Prober) { p.cmd = r }
}

// NewProber creates a Prober using the resolved toolchain.
func NewProber(tc Toolchain, opts ...ProberOption) *Prober {
	p := &Prober{ffprobe: tc.FFprobe, cmd: osCommandRunner{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Duration returns the duration of a media file in seconds.
// Only container metadata is read; the stream itself is never decoded.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	out, err := p.cmd.CombinedOutput(ctx, p.ffprobe, args)
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe: %v\nOutput: %s", ErrUnreadableMedia, err, string(out))
	}

	s := strings.TrimSpace(string(out))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: cannot parse duration %q", ErrUnreadableMedia, s)
	}
	if sec <= 0 {
		return 0, fmt.Errorf("%w: non-positive duration %.3f", ErrUnreadableMedia, sec)
	}
	return sec, nil
}
