package acquire

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultMaxUploadBytes caps uploaded files at 500 MB.
const DefaultMaxUploadBytes = 500 << 20

// allowedUploadTypes is the content-type allowlist for uploads. Anything
// ffmpeg can demux into audio is fair game.
var allowedUploadTypes = map[string]bool{
	"video/mp4":        true,
	"video/webm":       true,
	"video/quicktime":  true,
	"video/x-matroska": true,
	"audio/mpeg":       true,
	"audio/mp4":        true,
	"audio/x-m4a":      true,
	"audio/wav":        true,
	"audio/x-wav":      true,
	"audio/webm":       true,
	"audio/ogg":        true,
}

// AllowedUploadType reports whether a content type is accepted.
func AllowedUploadType(contentType string) bool {
	return allowedUploadTypes[contentType]
}

// StageUpload validates an upload and copies it into the work directory.
// The size cap is enforced while copying, so an oversized body never
// lands on disk in full; maxBytes <= 0 means DefaultMaxUploadBytes.
func StageUpload(workDir, taskID, filename, contentType string, body io.Reader, maxBytes int64) (string, error) {
	if !AllowedUploadType(contentType) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".bin"
	}
	dest := filepath.Join(workDir, taskID+ext)

	f, err := os.Create(dest) // #nosec G304 -- dest is built from our own work dir and a generated id
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}

	// Read one byte past the cap to distinguish "exactly at cap" from
	// "over cap" without trusting a client-supplied length.
	n, err := io.Copy(f, io.LimitReader(body, maxBytes+1))
	closeErr := f.Close()
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if closeErr != nil {
		os.Remove(dest)
		return "", fmt.Errorf("stage upload: %w", closeErr)
	}
	if n > maxBytes {
		os.Remove(dest)
		return "", fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, maxBytes)
	}
	return dest, nil
}
