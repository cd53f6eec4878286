package acquire

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fcortes/goalcut/internal/transcript"
)

// json3Document is the caption format yt-dlp writes with --sub-format
// json3. Events without segs are styling or window events and carry no
// caption text.
type json3Document struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// ParseJSON3 converts a json3 caption document into transcript segments.
// Empty-text events are dropped; timestamps convert from milliseconds.
func ParseJSON3(data []byte) ([]transcript.Segment, error) {
	var doc json3Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json3 captions: %w", err)
	}

	var segments []transcript.Segment
	for _, ev := range doc.Events {
		var b strings.Builder
		for _, seg := range ev.Segs {
			b.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(strings.ReplaceAll(b.String(), "\n", " "))
		if text == "" {
			continue
		}
		start := float64(ev.StartMs) / 1000
		segments = append(segments, transcript.Segment{
			Start: start,
			End:   start + float64(ev.DurationMs)/1000,
			Text:  text,
		})
	}
	return segments, nil
}
