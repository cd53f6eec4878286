package media_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/fcortes/goalcut/internal/media"
	"github.com/fcortes/goalcut/internal/transcript"
)

func TestNormalizeRanges(t *testing.T) {
	tests := []struct {
		name     string
		ranges   []transcript.TimeRange
		duration float64
		want     []transcript.TimeRange
	}{
		{
			name:     "in bounds untouched",
			ranges:   []transcript.TimeRange{{Start: 10, End: 20}},
			duration: 100,
			want:     []transcript.TimeRange{{Start: 10, End: 20}},
		},
		{
			name:     "clamped to bounds",
			ranges:   []transcript.TimeRange{{Start: -5, End: 120}},
			duration: 100,
			want:     []transcript.TimeRange{{Start: 0, End: 100}},
		},
		{
			name:     "inverted dropped",
			ranges:   []transcript.TimeRange{{Start: 30, End: 10}},
			duration: 100,
			want:     nil,
		},
		{
			name:     "empty after clamp dropped",
			ranges:   []transcript.TimeRange{{Start: 150, End: 200}},
			duration: 100,
			want:     nil,
		},
		{
			name: "mixed keeps order",
			ranges: []transcript.TimeRange{
				{Start: 50, End: 60},
				{Start: 10, End: 10},
				{Start: 5, End: 15},
			},
			duration: 100,
			want: []transcript.TimeRange{
				{Start: 50, End: 60},
				{Start: 5, End: 15},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := media.NormalizeRanges(tt.ranges, tt.duration)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeRanges() = %v, want %v", got, tt.want)
			}
		})
	}
}

// multiRunner records every invocation.
type multiRunner struct {
	err   error
	calls [][]string
}

func (m *multiRunner) CombinedOutput(_ context.Context, name string, args []string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	return nil, m.err
}

func TestCompileNoValidRanges(t *testing.T) {
	runner := &multiRunner{}
	c := media.NewCompiler(media.Toolchain{FFmpeg: "ffmpeg"}, media.WithCompilerRunner(runner))

	err := c.Compile(context.Background(), "src.mp4", 100,
		[]transcript.TimeRange{{Start: 50, End: 40}, {Start: 200, End: 300}}, "out.mp4")

	if !errors.Is(err, media.ErrNoValidRanges) {
		t.Fatalf("error = %v, want ErrNoValidRanges", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("ffmpeg invoked %d times for degenerate input, want 0", len(runner.calls))
	}
}

func TestCompileRendersEachRangeThenConcats(t *testing.T) {
	runner := &multiRunner{}
	c := media.NewCompiler(media.Toolchain{FFmpeg: "ffmpeg"}, media.WithCompilerRunner(runner))

	ranges := []transcript.TimeRange{
		{Start: 10, End: 20},
		{Start: 40, End: 55},
	}
	if err := c.Compile(context.Background(), "src.mp4", 100, ranges, "out.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two clip renders plus one concat.
	if len(runner.calls) != 3 {
		t.Fatalf("ffmpeg invoked %d times, want 3", len(runner.calls))
	}

	first := strings.Join(runner.calls[0], " ")
	for _, want := range []string{"-ss 10.000", "-to 20.000", "libx264", "aac"} {
		if !strings.Contains(first, want) {
			t.Errorf("first render %q missing %q", first, want)
		}
	}
	last := strings.Join(runner.calls[2], " ")
	for _, want := range []string{"-f concat", "-safe 0", "-c copy", "out.mp4"} {
		if !strings.Contains(last, want) {
			t.Errorf("concat call %q missing %q", last, want)
		}
	}
}

func TestCompileWrapsEncodingFailure(t *testing.T) {
	runner := &multiRunner{err: errors.New("exit status 1")}
	c := media.NewCompiler(media.Toolchain{FFmpeg: "ffmpeg"}, media.WithCompilerRunner(runner))

	err := c.Compile(context.Background(), "src.mp4", 100,
		[]transcript.TimeRange{{Start: 0, End: 10}}, "out.mp4")

	if !errors.Is(err, media.ErrEncodingFailed) {
		t.Fatalf("error = %v, want ErrEncodingFailed", err)
	}
}
