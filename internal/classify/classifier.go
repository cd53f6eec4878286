// Package classify asks a chat LLM which transcript segments matter:
// either the ranges relevant to a user's goal, or the indices of segments
// that present a solution. The model's output is free text and treated as
// untrustworthy; parsing never fails, it just finds nothing.
package classify

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fcortes/goalcut/internal/apierr"
	"github.com/fcortes/goalcut/internal/transcript"
)

// Classifier selects the interesting parts of a transcript.
type Classifier interface {
	// FilterByGoal returns the time ranges of the transcript that help
	// accomplish the given goal. An empty slice means the model found
	// nothing relevant (or its output was unparseable); err is non-nil
	// only for transport or API failures.
	FilterByGoal(ctx context.Context, script, goal string) ([]transcript.TimeRange, error)

	// SolutionIndices returns the zero-based indices of segments that
	// present a solution or key takeaway. Semantics mirror FilterByGoal:
	// empty means none found, err only for transport failures.
	SolutionIndices(ctx context.Context, script string) ([]int, error)
}

// chatCompleter is an internal interface for OpenAI chat completion.
// *openai.Client implements this implicitly.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Classifier    = (*OpenAIClassifier)(nil)
	_ chatCompleter = (*openai.Client)(nil)
)

const defaultMaxTokens = 3500

// OpenAIClassifier classifies transcripts using OpenAI chat completions.
type OpenAIClassifier struct {
	client    chatCompleter
	model     string
	maxTokens int
	retry     apierr.RetryConfig
}

// ClassifierOption configures an OpenAIClassifier.
type ClassifierOption func(*OpenAIClassifier)

// WithModel overrides the chat model.
func WithModel(model string) ClassifierOption {
	return func(c *OpenAIClassifier) {
		if model != "" {
			c.model = model
		}
	}
}

// WithRetry sets the retry configuration.
func WithRetry(cfg apierr.RetryConfig) ClassifierOption {
	return func(c *OpenAIClassifier) { c.retry = cfg }
}

// WithChatClient sets a custom chat client (for testing).
func WithChatClient(cc chatCompleter) ClassifierOption {
	return func(c *OpenAIClassifier) { c.client = cc }
}

// NewOpenAIClassifier creates a classifier backed by the given client.
func NewOpenAIClassifier(client *openai.Client, opts ...ClassifierOption) *OpenAIClassifier {
	c := &OpenAIClassifier{
		client:    client,
		model:     openai.GPT4o,
		maxTokens: defaultMaxTokens,
		retry:     apierr.DefaultRetry,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FilterByGoal asks the model for the transcript portions relevant to the
// goal and parses any bracketed time ranges out of the answer.
func (c *OpenAIClassifier) FilterByGoal(ctx context.Context, script, goal string) ([]transcript.TimeRange, error) {
	prompt := fmt.Sprintf(
		"You are an intelligent assistant helping extract useful information from a video transcript.\n\n"+
			"User's goal: %q\n\n"+
			"Below is the transcript of the video with timestamps:\n\n"+
			"%s\n\n"+
			"Please return ONLY the relevant segments (with timestamps) that directly help accomplish the goal. "+
			"Filter out introductions, fluff, or anything irrelevant.\n"+
			"If the video doesn't contain any relevant information, say so clearly.",
		goal, script)

	answer, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return transcript.ParseTimeRanges(answer), nil
}

// SolutionIndices asks the model which numbered segments present the
// actual solution and parses an integer list out of the answer.
func (c *OpenAIClassifier) SolutionIndices(ctx context.Context, script string) ([]int, error) {
	prompt := fmt.Sprintf(
		"You are an intelligent assistant analyzing a tutorial transcript.\n\n"+
			"Below is the transcript, one numbered segment per line:\n\n"+
			"%s\n\n"+
			"Identify the segments where the speaker presents the actual solution, "+
			"fix, or key steps, as opposed to introductions, context, or filler.\n"+
			"Respond with ONLY a JSON array of the zero-based segment numbers, "+
			"for example: [3, 4, 7]. If no segment presents a solution, respond with [].",
		script)

	answer, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return transcript.ParseIndices(answer), nil
}

func (c *OpenAIClassifier) complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: c.maxTokens,
	}

	resp, err := apierr.RetryWithBackoff(ctx, c.retry, func() (openai.ChatCompletionResponse, error) {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return openai.ChatCompletionResponse{}, apierr.Classify(err)
		}
		return resp, nil
	}, apierr.IsRetryable)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
