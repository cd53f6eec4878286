// Package media wraps the ffmpeg/ffprobe toolchain: locating the binaries,
// probing durations, extracting fixed-window audio chunks, and compiling
// time ranges into an output video. All invocations go through os/exec with
// context cancellation; nothing here reads media files into memory.
package media

import (
	"fmt"
	"runtime"
)

// Environment variables for custom binary paths.
const (
	envFFmpegPath  = "FFMPEG_PATH"
	envFFprobePath = "FFPROBE_PATH"
)

// Toolchain holds resolved paths to the media binaries.
type Toolchain struct {
	FFmpeg  string
	FFprobe string
}

// ResolveToolchain finds ffmpeg and ffprobe using the following precedence:
//  1. FFMPEG_PATH / FFPROBE_PATH environment variables (error if set but invalid)
//  2. System PATH
//
// Failure is ErrToolchainUnavailable wrapped with install instructions, so the
// message that eventually reaches an operator is actionable.
func ResolveToolchain() (Toolchain, error) {
	return resolveToolchain(osEnvProvider{})
}

func resolveToolchain(env envProvider) (Toolchain, error) {
	ffmpeg, err := resolveBinary(env, "ffmpeg", envFFmpegPath)
	if err != nil {
		return Toolchain{}, err
	}
	ffprobe, err := resolveBinary(env, "ffprobe", envFFprobePath)
	if err != nil {
		return Toolchain{}, err
	}
	return Toolchain{FFmpeg: ffmpeg, FFprobe: ffprobe}, nil
}

func resolveBinary(env envProvider, name, envKey string) (string, error) {
	if envPath := env.Getenv(envKey); envPath != "" {
		if _, err := env.LookPath(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but the binary is not runnable",
				ErrToolchainUnavailable, envKey, envPath)
		}
		return envPath, nil
	}
	if path, err := env.LookPath(name); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s is not on PATH\n\n%s",
		ErrToolchainUnavailable, name, InstallInstructions())
}

// InstallInstructions returns platform-specific FFmpeg install guidance.
func InstallInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return `To install FFmpeg:
  brew install ffmpeg

Or set FFMPEG_PATH and FFPROBE_PATH to your binaries.`
	case "linux":
		return `To install FFmpeg:
  Ubuntu/Debian: sudo apt install ffmpeg
  Fedora:        sudo dnf install ffmpeg
  Arch:          sudo pacman -S ffmpeg

Or set FFMPEG_PATH and FFPROBE_PATH to your binaries.`
	case "windows":
		return `To install FFmpeg:
  winget install ffmpeg

Or set FFMPEG_PATH and FFPROBE_PATH to your ffmpeg.exe/ffprobe.exe.`
	default:
		return `Download FFmpeg from https://ffmpeg.org/download.html
Or set FFMPEG_PATH and FFPROBE_PATH to your binaries.`
	}
}
