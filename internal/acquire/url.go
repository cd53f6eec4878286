package acquire

import (
	"fmt"
	"regexp"
	"strings"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([^&\n?/]+)`),
	regexp.MustCompile(`youtube\.com/embed/([^&\n?/]+)`),
	regexp.MustCompile(`youtube\.com/shorts/([^&\n?/]+)`),
}

// IsVideoURL reports whether the reference looks like a URL on a supported
// video platform.
func IsVideoURL(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	for _, domain := range []string{"youtube.com", "youtu.be"} {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// ExtractVideoID pulls the platform video id out of a URL.
func ExtractVideoID(url string) (string, error) {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%w: no video id in %q", ErrInvalidURL, url)
}

// EmbedURL builds the embeddable player URL for a video id. Used when the
// caption fallback succeeds: the caller cannot serve the video file, but a
// client can still embed the original.
func EmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + videoID
}
