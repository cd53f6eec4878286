// Package transcript holds the time-aligned transcript model shared by the
// transcription, classification, and compilation stages, plus the tolerant
// parsers for classifier output.
package transcript

import (
	"fmt"
	"strings"
)

// Segment is one unit of transcript output. Offsets are seconds.
// Before merging they are chunk-local; after merging they are global.
// Segments are immutable once produced.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// String returns a human-readable representation for logging.
func (s Segment) String() string {
	return fmt.Sprintf("[%.2f - %.2f] %s", s.Start, s.End, s.Text)
}

// TimeRange is a (start, end) pair in seconds with start < end.
// It is both classifier output and compiler input.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the length of the range in seconds.
func (r TimeRange) Duration() float64 {
	return r.End - r.Start
}

// Merge shifts each chunk's local segments by that chunk's global start
// offset and concatenates them in chunk order. Chunks are extracted
// sequentially from 0 to the source duration with no overlap, so chunk
// order already implies global time order and no sorting happens here.
// Segments whose trimmed text is empty are dropped.
//
// If the two slices differ in length, only the common prefix is merged.
func Merge(chunks [][]Segment, offsets []float64) []Segment {
	n := min(len(chunks), len(offsets))

	var out []Segment
	for i := 0; i < n; i++ {
		for _, seg := range chunks[i] {
			text := strings.TrimSpace(seg.Text)
			if text == "" {
				continue
			}
			out = append(out, Segment{
				Start: seg.Start + offsets[i],
				End:   seg.End + offsets[i],
				Text:  text,
			})
		}
	}
	return out
}

// Overlapping returns the segments that overlap at least one of the
// ranges, preserving order. Touching endpoints do not count as overlap.
func Overlapping(segments []Segment, ranges []TimeRange) []Segment {
	var out []Segment
	for _, seg := range segments {
		for _, r := range ranges {
			if seg.Start < r.End && seg.End > r.Start {
				out = append(out, seg)
				break
			}
		}
	}
	return out
}

// Script renders segments as the timestamped script sent to the
// classifier, one "[start - end] text" line per segment.
func Script(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%.2f - %.2f] %s", seg.Start, seg.End, strings.TrimSpace(seg.Text))
	}
	return b.String()
}

// NumberedScript renders segments as "N. [start - end] text" lines, one
// per segment, zero-based. The classifier answers with these numbers when
// asked for solution segments.
func NumberedScript(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. [%.2f - %.2f] %s", i, seg.Start, seg.End, strings.TrimSpace(seg.Text))
	}
	return b.String()
}

// Timestamp formats seconds as MM:SS or HH:MM:SS for display.
func Timestamp(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
