package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alnah/postopt/internal/batch"
	"github.com/alnah/postopt/internal/format"
	"github.com/alnah/postopt/internal/optimize"
)

// batchStopNotice is printed on the first Ctrl+C during a batch.
const batchStopNotice = "Stopping after the current post. Press Ctrl+C again to abort."

// BatchCmd creates the batch command.
// The env parameter provides injectable dependencies for testing.
func BatchCmd(env *Env) *cobra.Command {
	var flags generationFlags

	cmd := &cobra.Command{
		Use:   "batch <file.json>",
		Short: "Optimize every post in a JSON file",
		Long: `Optimize a JSON array of posts, one at a time, in order.

Each element is an object:
  {"description": "...", "platform": "instagram", "context": "..."}
description is required; platform defaults to instagram; context is optional.
The file is validated before any post is sent. A post that fails does not
stop the batch; the output has one result per input post, in order.

Press Ctrl+C once to stop after the current post (results are still
written), twice to abort immediately.`,
		Example: `  postopt batch posts.json -o results.json
  postopt batch posts.json --provider openai --pretty
  postopt batch posts.json -q > results.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, env, args[0], flags)
		},
	}

	flags.register(cmd)

	return cmd
}

// runBatch executes the batch pipeline.
// Validation order: file exists -> file content -> settings -> output -> API key
func runBatch(cmd *cobra.Command, env *Env, inputPath string, flags generationFlags) error {
	// === VALIDATION (fail-fast) ===

	if _, err := os.Stat(inputPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}

	reqs, err := batch.LoadFile(inputPath)
	if err != nil {
		return err
	}

	s, err := flags.resolve(cmd, env)
	if err != nil {
		return err
	}
	if err := checkOutputFree(s.output, s.outputDir); err != nil {
		return err
	}

	batchID := uuid.NewString()
	logger := s.logger(env).With().Str("batch_id", batchID).Logger()

	// === SETUP ===

	stopper, _ := env.Interrupts.Watch(cmd.Context(), batchStopNotice)
	defer stopper.Close()

	// Requests run on the command context so the post in flight finishes
	// after a first Ctrl+C.
	ctx := cmd.Context()
	opt, err := newOptimizer(ctx, env, s, logger)
	if err != nil {
		return err
	}

	// === GENERATION ===

	rep := newReporter(env.Stderr, s.noColor)
	if !s.quiet {
		_, _ = fmt.Fprintf(env.Stderr, "Optimizing %d posts (provider: %s)...\n\n", len(reqs), s.provider)
	}
	logger.Info().Int("posts", len(reqs)).Str("file", inputPath).Msg("batch started")

	start := env.Now()
	results := opt.RunBatch(ctx, reqs,
		optimize.WithStop(stopper.Requested),
		optimize.WithProgress(func(i, total int, res optimize.Result) {
			if !s.quiet {
				rep.result(fmt.Sprintf("[%d/%d]", i+1, total), res)
			}
		}),
	)
	elapsed := env.Now().Sub(start)

	// === OUTPUT ===

	path, err := emitJSON(env, s.output, s.outputDir, func(w io.Writer) error {
		return batch.Encode(w, results, s.pretty)
	})
	if err != nil {
		return err
	}

	failed, interrupted := tally(results)
	if !s.quiet {
		rep.summary(results, format.DurationHuman(elapsed))
		if path != "" {
			_, _ = fmt.Fprintf(env.Stderr, "Wrote %s\n", path)
		}
	}
	logger.Info().
		Int("posts", len(results)).
		Int("failed", failed).
		Int("interrupted", interrupted).
		Dur("elapsed", elapsed).
		Msg("batch finished")

	switch {
	case interrupted > 0:
		return fmt.Errorf("%d of %d posts not processed: %w", interrupted, len(results), optimize.ErrBatchInterrupted)
	case failed > 0:
		return fmt.Errorf("%d of %d posts failed: %w", failed, len(results), ErrBatchFailures)
	}
	return nil
}

// tally counts failed posts, and among them those skipped by an interrupt.
func tally(results []optimize.Result) (failed, interrupted int) {
	for _, r := range results {
		if r.Success {
			continue
		}
		failed++
		if errors.Is(r.Err, optimize.ErrBatchInterrupted) {
			interrupted++
		}
	}
	return failed, interrupted
}
