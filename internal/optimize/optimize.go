// Package optimize runs the single-post pipeline (prompt, generation,
// metrics) and the sequential batch runner on top of it.
package optimize

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alnah/postopt/internal/generate"
	"github.com/alnah/postopt/internal/lang"
	"github.com/alnah/postopt/internal/metrics"
	"github.com/alnah/postopt/internal/platform"
)

// ErrEmptyDescription indicates a blank post description.
var ErrEmptyDescription = errors.New("description cannot be empty")

// ErrBatchInterrupted marks posts skipped because the batch was stopped.
var ErrBatchInterrupted = errors.New("batch interrupted before this post was processed")

// TextGenerator produces optimized text for a prompt.
// *generate.Client implements it.
type TextGenerator interface {
	GenerateWithRetry(ctx context.Context, prompt string, cfg generate.Config) (string, error)
}

// Compile-time interface compliance check.
var _ TextGenerator = (*generate.Client)(nil)

// Optimizer turns Requests into Results.
type Optimizer struct {
	gen      TextGenerator
	cfg      generate.Config
	language lang.Language
	logger   zerolog.Logger
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLanguage asks the model to answer in l. English and the zero value
// add no instruction.
func WithLanguage(l lang.Language) Option {
	return func(o *Optimizer) {
		o.language = l
	}
}

// WithLogger sets the logger used to report failed posts.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Optimizer) {
		o.logger = l
	}
}

// New creates an Optimizer sending every prompt to gen with cfg.
func New(gen TextGenerator, cfg generate.Config, opts ...Option) *Optimizer {
	o := &Optimizer{
		gen:    gen,
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize runs the pipeline for one request.
// Every failure is returned as a failed Result; Optimize never panics on
// bad input and never returns partial text.
func (o *Optimizer) Optimize(ctx context.Context, req Request) Result {
	if strings.TrimSpace(req.Description) == "" {
		return o.fail(req, ErrEmptyDescription)
	}

	p, err := platform.Parse(req.Platform)
	if err != nil {
		return o.fail(req, err)
	}

	prompt := p.Render(req.Description, req.Context)
	if instr := o.language.Instruction(); instr != "" {
		prompt = instr + "\n\n" + prompt
	}

	optimized, err := o.gen.GenerateWithRetry(ctx, prompt, o.cfg)
	if err != nil {
		return o.fail(req, err)
	}

	return success(req, optimized,
		metrics.Compute(req.Description, optimized),
		metrics.Suggest(optimized, p))
}

func (o *Optimizer) fail(req Request, err error) Result {
	o.logger.Error().
		Err(err).
		Str("platform", req.Platform).
		Int("description_length", len(req.Description)).
		Msg("post optimization failed")
	return failure(req, err)
}
