package media

import "errors"

// ErrToolchainUnavailable indicates ffmpeg or ffprobe could not be found.
// The wrapping error carries platform-specific install instructions.
var ErrToolchainUnavailable = errors.New("media toolchain not found")

// ErrUnreadableMedia indicates a file's metadata could not be inspected.
var ErrUnreadableMedia = errors.New("cannot read media metadata")

// ErrExtractionFailed indicates ffmpeg failed while extracting an audio chunk.
var ErrExtractionFailed = errors.New("audio extraction failed")

// ErrEncodingFailed indicates ffmpeg failed while rendering or joining clips.
var ErrEncodingFailed = errors.New("video encoding failed")

// ErrNoValidRanges indicates no time ranges survived clamping.
var ErrNoValidRanges = errors.New("no valid time ranges")
