package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/postopt/internal/apierr"
	"github.com/alnah/postopt/internal/batch"
	"github.com/alnah/postopt/internal/cli"
	"github.com/alnah/postopt/internal/config"
	"github.com/alnah/postopt/internal/generate"
	"github.com/alnah/postopt/internal/interrupt"
	"github.com/alnah/postopt/internal/lang"
	"github.com/alnah/postopt/internal/logging"
	"github.com/alnah/postopt/internal/optimize"
	"github.com/alnah/postopt/internal/platform"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK            = 0
	ExitGeneral       = 1
	ExitUsage         = 2
	ExitSetup         = 3
	ExitValidation    = 4
	ExitGeneration    = 5
	ExitBatchFailures = 6
	ExitInterrupt     = interrupt.ExitCode
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	rootCmd := newRootCmd(env)

	// Signals are handled per command: optimize and batch each start their
	// own watcher so a first Ctrl+C can stop gracefully.
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// newRootCmd builds the command tree.
func newRootCmd(env *cli.Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "postopt",
		Short: "Optimize social media post descriptions with a language model",
		Long: `Rewrite post descriptions for Instagram, LinkedIn or Twitter with Gemini
or OpenAI, then report engagement metrics and suggestions.

API keys are read from GEMINI_API_KEY or OPENAI_API_KEY (a .env file in the
current directory is loaded when present).`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.OptimizeCmd(env))
	rootCmd.AddCommand(cli.BatchCmd(env))
	rootCmd.AddCommand(cli.PlatformsCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	return rootCmd
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Interrupts: a canceled request, or a batch stopped by Ctrl+C.
	if errors.Is(err, context.Canceled) || errors.Is(err, optimize.ErrBatchInterrupted) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3).
	if errors.Is(err, cli.ErrAPIKeyMissing) || errors.Is(err, cli.ErrInvalidProvider) {
		return ExitSetup
	}

	// Validation errors (ExitValidation = 4).
	if errors.Is(err, cli.ErrNoDescription) || errors.Is(err, optimize.ErrEmptyDescription) ||
		errors.Is(err, platform.ErrUnsupported) || errors.Is(err, batch.ErrInvalidFile) ||
		errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrOutputExists) ||
		errors.Is(err, lang.ErrUnsupported) || errors.Is(err, generate.ErrInvalidConfig) ||
		errors.Is(err, config.ErrInvalidValue) || errors.Is(err, config.ErrUnknownKey) ||
		errors.Is(err, config.ErrNotDirectory) || errors.Is(err, config.ErrNotWritable) ||
		errors.Is(err, logging.ErrInvalidLevel) {
		return ExitValidation
	}

	// Generation errors (ExitGeneration = 5).
	if errors.Is(err, cli.ErrOptimizeFailed) ||
		errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrQuotaExceeded) ||
		errors.Is(err, apierr.ErrTimeout) || errors.Is(err, apierr.ErrAuthFailed) ||
		errors.Is(err, apierr.ErrBadRequest) || errors.Is(err, generate.ErrEmptyResponse) {
		return ExitGeneration
	}

	// Batch finished with failed posts (ExitBatchFailures = 6).
	if errors.Is(err, cli.ErrBatchFailures) {
		return ExitBatchFailures
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
