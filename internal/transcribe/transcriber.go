// Package transcribe converts extracted audio chunks into timestamped
// transcript segments via OpenAI's Whisper API.
package transcribe

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fcortes/goalcut/internal/apierr"
	"github.com/fcortes/goalcut/internal/transcript"
)

// Transcriber transcribes audio files into timestamped segments.
type Transcriber interface {
	// Transcribe converts an audio file to transcript segments with
	// timestamps relative to the start of the file.
	Transcribe(ctx context.Context, audioPath string) ([]transcript.Segment, error)
}

// audioTranscriber is an internal interface for OpenAI audio transcription.
// *openai.Client implements this implicitly.
// This allows injecting mocks in tests.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber      = (*OpenAITranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// OpenAITranscriber transcribes audio using OpenAI's Whisper API.
// It supports automatic retries with exponential backoff for transient errors.
type OpenAITranscriber struct {
	client audioTranscriber
	model  string
	retry  apierr.RetryConfig
}

// TranscriberOption configures an OpenAITranscriber.
type TranscriberOption func(*OpenAITranscriber)

// WithModel overrides the transcription model.
func WithModel(model string) TranscriberOption {
	return func(t *OpenAITranscriber) {
		if model != "" {
			t.model = model
		}
	}
}

// WithRetry sets the retry configuration.
func WithRetry(cfg apierr.RetryConfig) TranscriberOption {
	return func(t *OpenAITranscriber) { t.retry = cfg }
}

// WithClient sets a custom transcription client (for testing).
func WithClient(c audioTranscriber) TranscriberOption {
	return func(t *OpenAITranscriber) { t.client = c }
}

// NewOpenAITranscriber creates a new OpenAITranscriber.
// The client is injected to enable testing with mocks.
func NewOpenAITranscriber(client *openai.Client, opts ...TranscriberOption) *OpenAITranscriber {
	t := &OpenAITranscriber{
		client: client,
		model:  openai.Whisper1,
		retry:  apierr.DefaultRetry,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe transcribes an audio file using OpenAI's API.
// Timestamps in the returned segments are relative to the start of the
// file; callers transcribing chunks of a longer source must shift them.
// Transient errors (rate limits, timeouts, server errors) are retried.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) ([]transcript.Segment, error) {
	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		// Verbose JSON is the only response format carrying per-segment
		// timestamps.
		Format: openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := apierr.RetryWithBackoff(ctx, t.retry, func() (openai.AudioResponse, error) {
		resp, err := t.client.CreateTranscription(ctx, req)
		if err != nil {
			return openai.AudioResponse{}, apierr.Classify(err)
		}
		return resp, nil
	}, apierr.IsRetryable)
	if err != nil {
		return nil, fmt.Errorf("transcribe %q: %w", audioPath, err)
	}

	return segmentsFromResponse(resp), nil
}

// segmentsFromResponse converts the API response to transcript segments,
// dropping segments whose text is empty after trimming.
func segmentsFromResponse(resp openai.AudioResponse) []transcript.Segment {
	segments := make([]transcript.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  text,
		})
	}
	if len(segments) == 0 && strings.TrimSpace(resp.Text) != "" {
		// Some formats omit segment detail; fall back to a single segment
		// spanning the reported duration.
		segments = append(segments, transcript.Segment{
			Start: 0,
			End:   resp.Duration,
			Text:  strings.TrimSpace(resp.Text),
		})
	}
	return segments
}

// EstimateCost returns a rough transcription cost in USD for the given
// audio duration, using Whisper's per-minute pricing.
func EstimateCost(duration time.Duration) float64 {
	const perMinuteUSD = 0.006
	return duration.Minutes() * perMinuteUSD
}
