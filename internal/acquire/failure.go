package acquire

import "strings"

// FailureReason classifies why a download attempt failed, based on the
// downloader's output. The classification decides whether the caption
// fallback is worth attempting.
type FailureReason int

const (
	// ReasonUnknown covers anything the patterns below don't match.
	ReasonUnknown FailureReason = iota

	// ReasonBlocked means the platform refused the request as automated
	// traffic (bot check, consent wall, sign-in requirement). Captions
	// may still be reachable.
	ReasonBlocked

	// ReasonNotFound means the video does not exist or is private.
	ReasonNotFound

	// ReasonNetwork means the request never completed.
	ReasonNetwork
)

func (r FailureReason) String() string {
	switch r {
	case ReasonBlocked:
		return "blocked"
	case ReasonNotFound:
		return "not found"
	case ReasonNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// blockedMarkers are substrings of downloader output that indicate the
// platform is refusing automated access rather than the video being bad.
var blockedMarkers = []string{
	"sign in to confirm",
	"confirm you're not a bot",
	"consent",
	"captcha",
	"http error 403",
	"access denied",
	"too many requests",
	"http error 429",
}

var notFoundMarkers = []string{
	"video unavailable",
	"private video",
	"has been removed",
	"http error 404",
	"this video is not available",
}

var networkMarkers = []string{
	"unable to download webpage",
	"connection reset",
	"connection refused",
	"timed out",
	"temporary failure in name resolution",
	"network is unreachable",
}

// ClassifyFailure inspects downloader output and maps it to a
// FailureReason. All pattern matching for download failures lives here;
// callers branch on the returned reason, never on raw output.
func ClassifyFailure(output string) FailureReason {
	lower := strings.ToLower(output)
	for _, m := range blockedMarkers {
		if strings.Contains(lower, m) {
			return ReasonBlocked
		}
	}
	for _, m := range notFoundMarkers {
		if strings.Contains(lower, m) {
			return ReasonNotFound
		}
	}
	for _, m := range networkMarkers {
		if strings.Contains(lower, m) {
			return ReasonNetwork
		}
	}
	return ReasonUnknown
}
