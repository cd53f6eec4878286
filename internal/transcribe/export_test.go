package transcribe

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/fcortes/goalcut/internal/apierr"
)

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

// NewTestTranscriber creates an OpenAITranscriber with a mock audioTranscriber.
func NewTestTranscriber(client audioTranscriber, opts ...TranscriberOption) *OpenAITranscriber {
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

var SegmentsFromResponse = segmentsFromResponse
