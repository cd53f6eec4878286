// Package acquire resolves a video reference into something the pipeline
// can transcribe: a downloaded media file, or published captions when the
// platform refuses the download. Uploads are validated and staged here too.
package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fcortes/goalcut/internal/transcript"
)

// Environment variable for a custom yt-dlp binary path.
const envYTDLPPath = "YTDLP_PATH"

// Browser-like request identity. The platform throttles obvious
// automation; these mirror a desktop Chrome session.
const (
	downloadUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	downloadReferer   = "https://www.youtube.com/"
)

// SourceKind says what the acquirer managed to obtain.
type SourceKind int

const (
	// KindVideo is a full video+audio file; every pipeline stage applies.
	KindVideo SourceKind = iota

	// KindAudio is an audio-only file; transcription works, compilation
	// cannot (there is no video to cut).
	KindAudio

	// KindCaptions means no media was obtainable, but the platform's
	// published captions were. Segments are final; transcription and
	// compilation are skipped.
	KindCaptions
)

func (k SourceKind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindCaptions:
		return "captions"
	default:
		return "unknown"
	}
}

// Source is the result of acquisition.
type Source struct {
	// Path is the local media file. Empty for KindCaptions.
	Path string

	Kind SourceKind

	// Segments holds the caption-derived transcript for KindCaptions.
	Segments []transcript.Segment

	// EmbedURL is an embeddable player URL, set for KindCaptions so a
	// client can still show the original video.
	EmbedURL string
}

// ResolveYTDLP finds the yt-dlp binary: YTDLP_PATH environment variable
// first, then the system PATH.
func ResolveYTDLP() (string, error) {
	return resolveYTDLP(osEnvProvider{})
}

func resolveYTDLP(env envProvider) (string, error) {
	if envPath := env.Getenv(envYTDLPPath); envPath != "" {
		if _, err := env.LookPath(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but the binary is not runnable",
				ErrDownloadFailed, envYTDLPPath, envPath)
		}
		return envPath, nil
	}
	if path, err := env.LookPath("yt-dlp"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: yt-dlp is not on PATH (pip install yt-dlp)", ErrDownloadFailed)
}

// Acquirer downloads remote sources via yt-dlp with a fallback chain.
type Acquirer struct {
	ytdlp   string
	workDir string
	cmd     commandRunner
}

// AcquirerOption configures an Acquirer.
type AcquirerOption func(*Acquirer)

// WithRunner sets the command runner (for testing).
func WithRunner(r commandRunner) AcquirerOption {
	return func(a *Acquirer) { a.cmd = r }
}

// NewAcquirer creates an Acquirer writing downloads under workDir.
func NewAcquirer(ytdlpPath, workDir string, opts ...AcquirerOption) *Acquirer {
	a := &Acquirer{ytdlp: ytdlpPath, workDir: workDir, cmd: osCommandRunner{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Acquire resolves a remote URL into a Source. Strategies are tried in
// order: full video, audio-only, and, when the failures look like the
// platform blocking automated access, the published-captions fallback.
func (a *Acquirer) Acquire(ctx context.Context, url, taskID string) (*Source, error) {
	if !IsVideoURL(url) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, url)
	}

	videoPath := filepath.Join(a.workDir, taskID+".mp4")
	videoOut, videoErr := a.downloadVideo(ctx, url, videoPath)
	if videoErr == nil {
		return &Source{Path: videoPath, Kind: KindVideo}, nil
	}

	audioPath := filepath.Join(a.workDir, taskID+".m4a")
	audioOut, audioErr := a.downloadAudio(ctx, url, audioPath)
	if audioErr == nil {
		return &Source{Path: audioPath, Kind: KindAudio}, nil
	}

	reason := ClassifyFailure(videoOut)
	if reason != ReasonBlocked {
		reason = ClassifyFailure(audioOut)
	}
	if reason == ReasonBlocked {
		src, err := a.fetchCaptions(ctx, url, taskID)
		if err == nil {
			return src, nil
		}
		return nil, fmt.Errorf("%w: download blocked and caption fallback failed: %v",
			ErrDownloadFailed, err)
	}

	return nil, fmt.Errorf("%w (%s): video: %v; audio: %v",
		ErrDownloadFailed, reason, videoErr, audioErr)
}

func (a *Acquirer) downloadVideo(ctx context.Context, url, dest string) (string, error) {
	args := append(a.commonArgs(),
		"-f", "bestvideo[height<=1080]+bestaudio/best[height<=1080]",
		"--merge-output-format", "mp4",
		"-o", dest,
		url,
	)
	return a.run(ctx, args, dest)
}

func (a *Acquirer) downloadAudio(ctx context.Context, url, dest string) (string, error) {
	// -x re-muxes to audio; the output template must not fix an
	// extension or yt-dlp appends its own.
	template := dest[:len(dest)-len(filepath.Ext(dest))] + ".%(ext)s"
	args := append(a.commonArgs(),
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "m4a",
		"-o", template,
		url,
	)
	return a.run(ctx, args, dest)
}

// fetchCaptions asks the platform for its published subtitles instead of
// the media. Auto-generated captions are accepted; manual ones win when
// both exist because yt-dlp writes them under the same name and manual
// subs are requested first.
func (a *Acquirer) fetchCaptions(ctx context.Context, url, taskID string) (*Source, error) {
	base := filepath.Join(a.workDir, taskID+"-captions")
	args := append(a.commonArgs(),
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-format", "json3",
		"--sub-langs", "en.*,en",
		"-o", base,
		url,
	)
	out, err := a.cmd.CombinedOutput(ctx, a.ytdlp, args)
	if err != nil {
		return nil, fmt.Errorf("%w: %v\nOutput: %s", ErrCaptionsUnavailable, err, string(out))
	}

	matches, err := filepath.Glob(base + "*.json3")
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("%w: no caption file written", ErrCaptionsUnavailable)
	}
	data, err := os.ReadFile(matches[0]) // #nosec G304 -- path built from our own template
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptionsUnavailable, err)
	}
	segments, err := ParseJSON3(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptionsUnavailable, err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: caption file empty", ErrCaptionsUnavailable)
	}

	videoID, err := ExtractVideoID(url)
	if err != nil {
		return nil, err
	}
	return &Source{
		Kind:     KindCaptions,
		Segments: segments,
		EmbedURL: EmbedURL(videoID),
	}, nil
}

func (a *Acquirer) commonArgs() []string {
	return []string{
		"--no-playlist",
		"--no-warnings",
		"--retries", "3",
		"--fragment-retries", "3",
		"--user-agent", downloadUserAgent,
		"--referer", downloadReferer,
		"--extractor-args", "youtube:player_client=android,web",
	}
}

// run executes yt-dlp and verifies the expected file exists afterwards.
// The combined output is returned for failure classification either way.
func (a *Acquirer) run(ctx context.Context, args []string, expect string) (string, error) {
	out, err := a.cmd.CombinedOutput(ctx, a.ytdlp, args)
	if err != nil {
		return string(out), fmt.Errorf("yt-dlp: %w", err)
	}
	if _, err := os.Stat(expect); err != nil {
		return string(out), fmt.Errorf("downloaded file missing at %s", expect)
	}
	return string(out), nil
}
