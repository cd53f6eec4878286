package acquire_test

import (
	"testing"

	"github.com/fcortes/goalcut/internal/acquire"
)

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   acquire.FailureReason
	}{
		{
			name:   "sign-in bot check",
			output: "ERROR: [youtube] abc: Sign in to confirm you're not a bot.",
			want:   acquire.ReasonBlocked,
		},
		{
			name:   "403",
			output: "ERROR: unable to download video data: HTTP Error 403: Forbidden",
			want:   acquire.ReasonBlocked,
		},
		{
			name:   "rate limited",
			output: "HTTP Error 429: Too Many Requests",
			want:   acquire.ReasonBlocked,
		},
		{
			name:   "private video",
			output: "ERROR: Private video. Sign up if you've been granted access",
			want:   acquire.ReasonNotFound,
		},
		{
			name:   "video gone",
			output: "ERROR: Video unavailable. This video has been removed",
			want:   acquire.ReasonNotFound,
		},
		{
			name:   "404",
			output: "HTTP Error 404: Not Found",
			want:   acquire.ReasonNotFound,
		},
		{
			name:   "dns failure",
			output: "ERROR: Unable to download webpage: Temporary failure in name resolution",
			want:   acquire.ReasonNetwork,
		},
		{
			name:   "connection reset",
			output: "error: connection reset by peer",
			want:   acquire.ReasonNetwork,
		},
		{
			name:   "anything else",
			output: "ERROR: ffmpeg exited with code 1",
			want:   acquire.ReasonUnknown,
		},
		{
			name:   "empty",
			output: "",
			want:   acquire.ReasonUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := acquire.ClassifyFailure(tt.output); got != tt.want {
				t.Errorf("ClassifyFailure(%q) = %v, want %v", tt.output, got, tt.want)
			}
		})
	}
}

func TestFailureReasonString(t *testing.T) {
	tests := []struct {
		reason acquire.FailureReason
		want   string
	}{
		{acquire.ReasonUnknown, "unknown"},
		{acquire.ReasonBlocked, "blocked"},
		{acquire.ReasonNotFound, "not found"},
		{acquire.ReasonNetwork, "network"},
	}
	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
