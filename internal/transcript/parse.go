package transcript

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// The classifier is an LLM and its output is free text. These parsers are
// deliberately tolerant: anything unparseable yields an empty result, never
// an error, so a confused model degrades to "no segments found" instead of
// failing the pipeline.

// timeRangeRe matches bracketed timestamp pairs like "[23.84 - 27.12]".
var timeRangeRe = regexp.MustCompile(`\[(\d+\.?\d*)\s*-\s*(\d+\.?\d*)\]`)

// ParseTimeRanges extracts bracketed "[start - end]" timestamp pairs from
// free text. Pairs where start >= end are kept here and clamped or dropped
// later by the compiler, except pairs that fail to parse, which are skipped.
func ParseTimeRanges(text string) []TimeRange {
	matches := timeRangeRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]TimeRange, 0, len(matches))
	for _, m := range matches {
		start, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		out = append(out, TimeRange{Start: start, End: end})
	}
	return out
}

// intArrayRe locates the first JSON-looking array of integers in free text.
var intArrayRe = regexp.MustCompile(`\[\s*\d+(?:\s*,\s*\d+)*\s*\]`)

// ParseIndices extracts a list of non-negative segment indices from
// classifier output. It attempts a strict JSON decode of the whole text
// first, then of the first bracketed integer array found inside it, then
// falls back to digits inside that bracketed run. Duplicates are removed,
// first occurrence wins.
func ParseIndices(text string) []int {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var indices []int
	if err := json.Unmarshal([]byte(text), &indices); err == nil {
		return dedupeIndices(indices)
	}

	arr := intArrayRe.FindString(text)
	if arr == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(arr), &indices); err == nil {
		return dedupeIndices(indices)
	}

	// Last resort: pull out the digit runs by hand.
	for _, field := range strings.FieldsFunc(arr, func(r rune) bool {
		return r < '0' || r > '9'
	}) {
		n, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		indices = append(indices, n)
	}
	return dedupeIndices(indices)
}

func dedupeIndices(indices []int) []int {
	if len(indices) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(indices))
	out := indices[:0]
	for _, n := range indices {
		if n < 0 || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
