// Package task defines the task record and the in-memory table the
// pipeline writes and the API reads. Records are retained for the process
// lifetime; callers poll until a terminal status.
package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/fcortes/goalcut/internal/transcript"
)

// Status is a task's lifecycle state. Statuses advance linearly and never
// revive once terminal.
type Status string

const (
	StatusPending      Status = "pending"
	StatusAcquiring    Status = "acquiring"
	StatusTranscribing Status = "transcribing"
	StatusClassifying  Status = "classifying"
	StatusCompiling    Status = "compiling"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// validNext lists the allowed transitions per state. Failed is reachable
// from every non-terminal state and handled separately.
var validNext = map[Status]Status{
	StatusPending:      StatusAcquiring,
	StatusAcquiring:    StatusTranscribing,
	StatusTranscribing: StatusClassifying,
	StatusClassifying:  StatusCompiling,
	StatusCompiling:    StatusCompleted,
}

// CanTransition reports whether from → to is a legal move. Classifying may
// jump straight to Completed for the flows that skip compilation.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusFailed {
		return true
	}
	if from == StatusClassifying && to == StatusCompleted {
		return true
	}
	return validNext[from] == to
}

// ErrorCategory is the short machine-readable failure class surfaced to
// pollers alongside the human-readable suggestion.
type ErrorCategory string

const (
	CategoryToolchain     ErrorCategory = "toolchain"
	CategoryDownload      ErrorCategory = "download"
	CategoryDurationLimit ErrorCategory = "duration_limit"
	CategoryFormat        ErrorCategory = "format"
	CategoryNoSegments    ErrorCategory = "no_relevant_segments"
	CategoryCancelled     ErrorCategory = "cancelled"
	CategoryInternal      ErrorCategory = "internal"
)

// Flow distinguishes the two pipelines a task can run.
type Flow string

const (
	// FlowShorten downloads a remote video and compiles the goal-relevant
	// parts into a shorter one.
	FlowShorten Flow = "shorten"

	// FlowAnalyze transcribes an uploaded file and marks the solution
	// segments.
	FlowAnalyze Flow = "analyze"
)

// Result is present only on completed tasks.
type Result struct {
	// VideoPath is the compiled output file (shorten flow).
	VideoPath string `json:"video_path,omitempty"`

	// Transcript is the full merged transcript (analyze flow, and the
	// caption fallback of the shorten flow).
	Transcript []transcript.Segment `json:"transcript,omitempty"`

	// SolutionIndices are zero-based indices into Transcript marking
	// solution segments (analyze flow).
	SolutionIndices []int `json:"solution_indices,omitempty"`

	// EmbedURL points at the original video's embeddable player when the
	// caption fallback produced a transcript-only result.
	EmbedURL string `json:"embed_url,omitempty"`

	// TranscriptOnly is set when no output video exists: the source was
	// audio-only or acquisition fell back to captions.
	TranscriptOnly bool `json:"transcript_only,omitempty"`
}

// Task is one pipeline run. Only the worker goroutine driving the run
// mutates it; everyone else sees snapshots from the Store.
type Task struct {
	ID       string `json:"id"`
	Flow     Flow   `json:"flow"`
	Status   Status `json:"status"`
	Progress int    `json:"progress"`

	// Segments grows during transcription so pollers see partial
	// transcripts before the stage completes.
	Segments []transcript.Segment `json:"segments,omitempty"`

	Result *Result `json:"result,omitempty"`

	Error         string        `json:"error,omitempty"`
	ErrorCategory ErrorCategory `json:"error_category,omitempty"`
	Suggestion    string        `json:"suggestion,omitempty"`

	// Identity is the verified caller identity, recorded for logging only.
	Identity string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewID generates a task identifier.
func NewID() string {
	return uuid.NewString()
}

// clone returns a deep copy so callers can never mutate stored state
// through a snapshot.
func (t *Task) clone() *Task {
	cp := *t
	if t.Segments != nil {
		cp.Segments = make([]transcript.Segment, len(t.Segments))
		copy(cp.Segments, t.Segments)
	}
	if t.Result != nil {
		r := *t.Result
		if t.Result.Transcript != nil {
			r.Transcript = make([]transcript.Segment, len(t.Result.Transcript))
			copy(r.Transcript, t.Result.Transcript)
		}
		if t.Result.SolutionIndices != nil {
			r.SolutionIndices = make([]int, len(t.Result.SolutionIndices))
			copy(r.SolutionIndices, t.Result.SolutionIndices)
		}
		cp.Result = &r
	}
	return &cp
}
