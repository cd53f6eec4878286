package acquire

import "errors"

// ErrDownloadFailed indicates every strategy in the download chain failed.
var ErrDownloadFailed = errors.New("download failed")

// ErrCaptionsUnavailable indicates the caption fallback found no published
// transcript for the video.
var ErrCaptionsUnavailable = errors.New("no published captions available")

// ErrInvalidURL indicates the reference is not a recognizable video URL.
var ErrInvalidURL = errors.New("invalid video URL")

// ErrFileTooLarge indicates an upload exceeds the size cap.
var ErrFileTooLarge = errors.New("file too large")

// ErrUnsupportedType indicates an upload's content type is not accepted.
var ErrUnsupportedType = errors.New("unsupported content type")

// ErrDurationExceeded indicates a source is longer than the duration cap.
var ErrDurationExceeded = errors.New("media duration exceeds limit")
