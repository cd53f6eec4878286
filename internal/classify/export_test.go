package classify

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/fcortes/goalcut/internal/apierr"
)

// NewTestClassifier creates an OpenAIClassifier with a mock chat client.
func NewTestClassifier(client chatCompleter, opts ...ClassifierOption) *OpenAIClassifier {
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
