package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fcortes/goalcut/internal/acquire"
	"github.com/fcortes/goalcut/internal/apierr"
	"github.com/fcortes/goalcut/internal/media"
	"github.com/fcortes/goalcut/internal/transcribe"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitProcessing = 5
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := &cobra.Command{
		Use:     "goalcut",
		Short:   "Cut long videos down to the parts that matter",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(shortenCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(checkCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors: missing binaries or credentials.
	if errors.Is(err, media.ErrToolchainUnavailable) ||
		errors.Is(err, transcribe.ErrAPIKeyMissing) {
		return ExitSetup
	}

	// Validation errors: bad input before any heavy work.
	if errors.Is(err, acquire.ErrInvalidURL) ||
		errors.Is(err, acquire.ErrFileTooLarge) ||
		errors.Is(err, acquire.ErrUnsupportedType) ||
		errors.Is(err, acquire.ErrDurationExceeded) {
		return ExitValidation
	}

	// Processing errors: the pipeline itself failed.
	var failure *taskFailure
	if errors.As(err, &failure) ||
		errors.Is(err, acquire.ErrDownloadFailed) ||
		errors.Is(err, acquire.ErrCaptionsUnavailable) ||
		errors.Is(err, media.ErrExtractionFailed) ||
		errors.Is(err, media.ErrEncodingFailed) ||
		errors.Is(err, media.ErrNoValidRanges) ||
		errors.Is(err, media.ErrUnreadableMedia) ||
		errors.Is(err, apierr.ErrRateLimit) ||
		errors.Is(err, apierr.ErrQuotaExceeded) ||
		errors.Is(err, apierr.ErrTimeout) ||
		errors.Is(err, apierr.ErrAuthFailed) {
		return ExitProcessing
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate
// Cobra usage errors. Cobra doesn't expose typed errors, so string
// matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",
	"unknown flag",
	"unknown shorthand",
	"flag needs an argument",
	"invalid argument",
	"if any flags in the group",
	"accepts ",
	"requires at least",
	"requires at most",
	"unknown command",
}

func isCobraUsageError(err error) bool {
	msg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
