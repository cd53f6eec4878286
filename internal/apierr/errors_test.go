package apierr_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fcortes/goalcut/internal/apierr"
)

func apiError(status int, message string) error {
	return &openai.APIError{HTTPStatusCode: status, Message: message}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "429 rate limit",
			err:  apiError(http.StatusTooManyRequests, "rate limit reached"),
			want: apierr.ErrRateLimit,
		},
		{
			name: "429 quota exhausted",
			err:  apiError(http.StatusTooManyRequests, "you exceeded your current quota"),
			want: apierr.ErrQuotaExceeded,
		},
		{
			name: "429 billing issue",
			err:  apiError(http.StatusTooManyRequests, "billing hard limit reached"),
			want: apierr.ErrQuotaExceeded,
		},
		{
			name: "401 auth",
			err:  apiError(http.StatusUnauthorized, "invalid api key"),
			want: apierr.ErrAuthFailed,
		},
		{
			name: "408 timeout",
			err:  apiError(http.StatusRequestTimeout, "request timeout"),
			want: apierr.ErrTimeout,
		},
		{
			name: "504 gateway timeout",
			err:  apiError(http.StatusGatewayTimeout, "gateway timeout"),
			want: apierr.ErrTimeout,
		},
		{
			name: "400 bad request",
			err:  apiError(http.StatusBadRequest, "invalid file format"),
			want: apierr.ErrBadRequest,
		},
		{
			name: "404 not found",
			err:  apiError(http.StatusNotFound, "model not found"),
			want: apierr.ErrBadRequest,
		},
		{
			name: "500 server error retryable as timeout",
			err:  apiError(http.StatusInternalServerError, "server error"),
			want: apierr.ErrTimeout,
		},
		{
			name: "context deadline",
			err:  fmt.Errorf("wrapped: %w", context.DeadlineExceeded),
			want: apierr.ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apierr.Classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("Classify(%v) = %v, want wrapping %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyPassesThroughUnknownErrors(t *testing.T) {
	plain := errors.New("connection refused")
	if got := apierr.Classify(plain); got != plain {
		t.Errorf("Classify passed through = %v, want %v", got, plain)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("x: %w", apierr.ErrRateLimit), true},
		{fmt.Errorf("x: %w", apierr.ErrTimeout), true},
		{fmt.Errorf("x: %w", apierr.ErrQuotaExceeded), false},
		{fmt.Errorf("x: %w", apierr.ErrAuthFailed), false},
		{fmt.Errorf("x: %w", apierr.ErrBadRequest), false},
		{errors.New("something else"), false},
	}

	for _, tt := range tests {
		if got := apierr.IsRetryable(tt.err); got != tt.want {
			t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
