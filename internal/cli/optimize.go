package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/postopt/internal/batch"
	"github.com/alnah/postopt/internal/optimize"
	"github.com/alnah/postopt/internal/platform"
)

const optimizeStopNotice = "Canceling the request. Press Ctrl+C again to abort."

// optimizeOptions holds the optimize command inputs.
type optimizeOptions struct {
	description string
	platform    string
	context     string
	generationFlags
}

// OptimizeCmd creates the optimize command.
// The env parameter provides injectable dependencies for testing.
func OptimizeCmd(env *Env) *cobra.Command {
	var opts optimizeOptions

	cmd := &cobra.Command{
		Use:   "optimize [description]",
		Short: "Optimize one post description",
		Long: `Rewrite one post description for a platform and report metrics and suggestions.

The description comes from --description or the single argument. The JSON
result goes to stdout or --output; a readable report goes to stderr.

Platforms: ` + strings.Join(platform.Names(), ", "),
		Example: `  postopt optimize "New summer collection is here"
  postopt optimize -d "Hiring a Go engineer" -p linkedin -c "remote, EU time zones"
  postopt optimize -d "Launch day" -p twitter -o launch.json --pretty
  postopt optimize -d "Nouvelle collection" -l fr`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if opts.description != "" {
					return fmt.Errorf("give the description either as an argument or with --description, not both")
				}
				opts.description = args[0]
			}
			return runOptimize(cmd, env, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "Post description to optimize")
	cmd.Flags().StringVarP(&opts.platform, "platform", "p", platform.Instagram, "Target platform: "+strings.Join(platform.Names(), ", "))
	cmd.Flags().StringVarP(&opts.context, "context", "c", "", "Additional context for the rewrite")
	opts.register(cmd)

	return cmd
}

// runOptimize executes the single-post pipeline.
// Validation order: description -> platform -> settings -> output -> API key
func runOptimize(cmd *cobra.Command, env *Env, opts optimizeOptions) error {
	// === VALIDATION (fail-fast) ===

	if strings.TrimSpace(opts.description) == "" {
		return fmt.Errorf("%w (use --description or pass it as an argument): %w", ErrNoDescription, optimize.ErrEmptyDescription)
	}
	if _, err := platform.Parse(opts.platform); err != nil {
		return err
	}

	s, err := opts.resolve(cmd, env)
	if err != nil {
		return err
	}
	if err := checkOutputFree(s.output, s.outputDir); err != nil {
		return err
	}

	logger := s.logger(env)

	// === SETUP ===

	stopper, ctx := env.Interrupts.Watch(cmd.Context(), optimizeStopNotice)
	defer stopper.Close()

	opt, err := newOptimizer(ctx, env, s, logger)
	if err != nil {
		return err
	}

	// === GENERATION ===

	if !s.quiet {
		_, _ = fmt.Fprintf(env.Stderr, "Optimizing for %s (provider: %s)...\n", opts.platform, s.provider)
	}

	start := env.Now()
	res := opt.Optimize(ctx, optimize.Request{
		Description: opts.description,
		Platform:    opts.platform,
		Context:     opts.context,
	})
	elapsed := env.Now().Sub(start)

	// === OUTPUT ===

	if !s.quiet {
		newReporter(env.Stderr, s.noColor).result("", res)
	}

	path, err := emitJSON(env, s.output, s.outputDir, func(w io.Writer) error {
		return batch.EncodeResult(w, res, s.pretty)
	})
	if err != nil {
		return err
	}
	if path != "" && !s.quiet {
		_, _ = fmt.Fprintf(env.Stderr, "Wrote %s\n", path)
	}

	logger.Info().Bool("success", res.Success).Dur("elapsed", elapsed).Msg("optimize finished")

	if !res.Success {
		return fmt.Errorf("%w: %w", ErrOptimizeFailed, res.Err)
	}
	return nil
}
