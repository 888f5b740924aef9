package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates the provider's API key environment variable is not set.
	ErrAPIKeyMissing = errors.New("API key environment variable not set")

	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")

	// ErrNoDescription indicates neither --description nor an argument was given.
	ErrNoDescription = errors.New("no description given")

	// ErrOptimizeFailed indicates the single post could not be optimized.
	ErrOptimizeFailed = errors.New("optimization failed")

	// ErrBatchFailures indicates a batch finished with at least one failed post.
	ErrBatchFailures = errors.New("batch completed with failures")
)
