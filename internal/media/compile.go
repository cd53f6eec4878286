package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fcortes/goalcut/internal/transcript"
)

// Compiler renders selected time ranges of a source video into a single
// output file. Each range becomes a re-encoded sub-clip; the sub-clips are
// then joined losslessly with ffmpeg's concat demuxer.
type Compiler struct {
	ffmpeg string
	cmd    commandRunner
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithCompilerRunner sets the command runner (for testing).
func WithCompilerRunner(r commandRunner) CompilerOption {
	return func(c *Compiler) { c.cmd = r }
}

// NewCompiler creates a Compiler using the resolved toolchain.
func NewCompiler(tc Toolchain, opts ...CompilerOption) *Compiler {
	c := &Compiler{ffmpeg: tc.FFmpeg, cmd: osCommandRunner{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeRanges clamps ranges to [0, duration] and drops any that are
// empty or inverted after clamping. Input order is preserved.
func NormalizeRanges(ranges []transcript.TimeRange, duration float64) []transcript.TimeRange {
	var valid []transcript.TimeRange
	for _, r := range ranges {
		start := r.Start
		end := r.End
		if start < 0 {
			start = 0
		}
		if end > duration {
			end = duration
		}
		if start >= end {
			continue
		}
		valid = append(valid, transcript.TimeRange{Start: start, End: end})
	}
	return valid
}

// Compile cuts the given ranges out of src and joins them into outPath.
// Ranges are normalized first; if none survive, ErrNoValidRanges is
// returned and no output is written. Intermediate clips live in a temp
// directory that is always removed, even on failure.
func (c *Compiler) Compile(ctx context.Context, src string, duration float64, ranges []transcript.TimeRange, outPath string) error {
	valid := NormalizeRanges(ranges, duration)
	if len(valid) == 0 {
		return fmt.Errorf("%w: nothing to compile from %d candidate ranges", ErrNoValidRanges, len(ranges))
	}

	tempDir, err := os.MkdirTemp("", "goalcut-clips-*")
	if err != nil {
		return fmt.Errorf("%w: create temp dir: %v", ErrEncodingFailed, err)
	}
	defer os.RemoveAll(tempDir)

	clips := make([]string, 0, len(valid))
	for i, r := range valid {
		clip := filepath.Join(tempDir, fmt.Sprintf("clip_%03d.mp4", i))
		if err := c.renderClip(ctx, src, r, clip); err != nil {
			return err
		}
		clips = append(clips, clip)
	}

	listPath := filepath.Join(tempDir, "concat.txt")
	if err := writeConcatList(listPath, clips); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	}
	out, err := c.cmd.CombinedOutput(ctx, c.ffmpeg, args)
	if err != nil {
		return fmt.Errorf("%w: concat: %v\nOutput: %s", ErrEncodingFailed, err, string(out))
	}
	return nil
}

// renderClip re-encodes one [start, end] window of src. Re-encoding keeps
// cuts frame-accurate and gives every clip identical parameters, which the
// concat demuxer's stream copy requires.
func (c *Compiler) renderClip(ctx context.Context, src string, r transcript.TimeRange, dest string) error {
	args := []string{
		"-y",
		"-ss", formatSeconds(r.Start),
		"-to", formatSeconds(r.End),
		"-i", src,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "18",
		"-c:a", "aac",
		"-b:a", "192k",
		dest,
	}
	out, err := c.cmd.CombinedOutput(ctx, c.ffmpeg, args)
	if err != nil {
		return fmt.Errorf("%w: clip [%s - %s]: %v\nOutput: %s",
			ErrEncodingFailed, formatSeconds(r.Start), formatSeconds(r.End), err, string(out))
	}
	return nil
}

// writeConcatList writes the ffmpeg concat demuxer file listing.
func writeConcatList(path string, clips []string) error {
	var b strings.Builder
	for _, clip := range clips {
		// The demuxer treats single quotes as delimiters; our generated
		// names never contain them.
		fmt.Fprintf(&b, "file '%s'\n", clip)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
