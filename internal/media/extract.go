package media

import (
	"context"
	"fmt"
	"strconv"
)

// Chunk is one fixed-length window of a source's audio, planned before
// extraction. Start and Duration are seconds relative to the source.
type Chunk struct {
	Index    int
	Start    float64
	Duration float64
}

// End returns the chunk's exclusive end offset in the source.
func (c Chunk) End() float64 {
	return c.Start + c.Duration
}

// PlanChunks splits [0, total) into contiguous, non-overlapping windows of
// chunkLen seconds, the last one truncated to the source end. The windows
// are returned in strictly increasing start order; the merger depends on
// this ordering.
func PlanChunks(total, chunkLen float64) []Chunk {
	if total <= 0 || chunkLen <= 0 {
		return nil
	}

	var chunks []Chunk
	for start := 0.0; start < total; start += chunkLen {
		d := chunkLen
		if start+d > total {
			d = total - start
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Start: start, Duration: d})
	}
	return chunks
}

// Extractor extracts mono 16 kHz WAV audio slices suitable for the
// transcriber, whatever the source codec. Each call is independent and
// stateless; the caller owns deletion of the destination file.
type Extractor struct {
	ffmpeg string
	cmd    commandRunner
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithExtractorRunner sets the command runner (for testing).
func WithExtractorRunner(r commandRunner) ExtractorOption {
	return func(e *Extractor) { e.cmd = r }
}

// NewExtractor creates an Extractor using the resolved toolchain.
func NewExtractor(tc Toolchain, opts ...ExtractorOption) *Extractor {
	e := &Extractor{ffmpeg: tc.FFmpeg, cmd: osCommandRunner{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract writes the [start, start+duration) audio window of src to dest as
// 16 kHz mono WAV. ffmpeg streams the slice; no more than one chunk's worth
// of audio is ever in flight.
func (e *Extractor) Extract(ctx context.Context, src string, start, duration float64, dest string) error {
	args := []string{
		"-y",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(duration),
		"-i", src,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		dest,
	}
	out, err := e.cmd.CombinedOutput(ctx, e.ffmpeg, args)
	if err != nil {
		return fmt.Errorf("%w: chunk [%s +%s]: %v\nOutput: %s",
			ErrExtractionFailed, formatSeconds(start), formatSeconds(duration), err, string(out))
	}
	return nil
}

// formatSeconds formats a seconds value for ffmpeg -ss/-t/-to arguments.
func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
