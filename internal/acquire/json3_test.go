package acquire_test

import (
	"testing"

	"github.com/fcortes/goalcut/internal/acquire"
)

func TestParseJSON3(t *testing.T) {
	data := []byte(`{
		"events": [
			{"tStartMs": 0, "dDurationMs": 2500, "segs": [{"utf8": "hello "}, {"utf8": "there"}]},
			{"tStartMs": 2500, "dDurationMs": 1000},
			{"tStartMs": 3500, "dDurationMs": 2000, "segs": [{"utf8": "\n"}]},
			{"tStartMs": 5500, "dDurationMs": 3000, "segs": [{"utf8": "second line"}]}
		]
	}`)

	got, err := acquire.ParseJSON3(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d segments, want 2 (styling and newline-only events dropped): %+v", len(got), got)
	}
	if got[0].Start != 0 || got[0].End != 2.5 || got[0].Text != "hello there" {
		t.Errorf("segment 0 = %+v", got[0])
	}
	if got[1].Start != 5.5 || got[1].End != 8.5 || got[1].Text != "second line" {
		t.Errorf("segment 1 = %+v", got[1])
	}
}

func TestParseJSON3Invalid(t *testing.T) {
	if _, err := acquire.ParseJSON3([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseJSON3Empty(t *testing.T) {
	got, err := acquire.ParseJSON3([]byte(`{"events": []}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d segments, want 0", len(got))
	}
}
