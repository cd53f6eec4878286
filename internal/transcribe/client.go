package transcribe

import (
	"errors"
	"fmt"
	"os"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// EnvAPIKey is the environment variable holding the OpenAI API key.
const EnvAPIKey = "OPENAI_API_KEY"

// ErrAPIKeyMissing indicates OPENAI_API_KEY is not set.
var ErrAPIKeyMissing = errors.New("OPENAI_API_KEY is not set")

var (
	sharedOnce   sync.Once
	sharedClient *openai.Client
	sharedErr    error
)

// SharedClient returns a process-wide OpenAI client configured from the
// environment. The transcriber and the classifier share one client so
// connection pooling and rate limiting behave sanely.
func SharedClient() (*openai.Client, error) {
	sharedOnce.Do(func() {
		key := os.Getenv(EnvAPIKey)
		if key == "" {
			sharedErr = fmt.Errorf("%w: set it in the environment or a .env file", ErrAPIKeyMissing)
			return
		}
		sharedClient = openai.NewClient(key)
	})
	return sharedClient, sharedErr
}
