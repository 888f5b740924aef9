package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alnah/postopt/internal/apierr"
	"github.com/alnah/postopt/internal/config"
	"github.com/alnah/postopt/internal/generate"
	"github.com/alnah/postopt/internal/interrupt"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time

	// Sleep performs retry waits. Tests inject a no-op.
	Sleep apierr.SleepFunc

	// Factories for domain objects
	ConfigLoader     ConfigLoader
	GeneratorFactory GeneratorFactory
	Interrupts       InterruptFactory
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// GeneratorFactory creates the remote text generator for a provider.
type GeneratorFactory interface {
	NewGenerator(ctx context.Context, provider Provider, apiKey, model string) (generate.Generator, error)
}

// Stopper reports whether Ctrl+C asked the running command to stop.
type Stopper interface {
	Requested() bool
	Close()
}

// InterruptFactory starts watching for Ctrl+C. notice is printed on the
// first press; the returned context is canceled at the same time.
type InterruptFactory interface {
	Watch(parent context.Context, notice string) (Stopper, context.Context)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithSleep sets the retry wait function.
func WithSleep(fn apierr.SleepFunc) EnvOption {
	return func(e *Env) {
		e.Sleep = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithGeneratorFactory sets the generator factory.
func WithGeneratorFactory(f GeneratorFactory) EnvOption {
	return func(e *Env) {
		e.GeneratorFactory = f
	}
}

// WithInterrupts sets the Ctrl+C watcher factory.
func WithInterrupts(f InterruptFactory) EnvOption {
	return func(e *Env) {
		e.Interrupts = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		Getenv:           os.Getenv,
		Now:              time.Now,
		Sleep:            apierr.Sleep,
		ConfigLoader:     &defaultConfigLoader{},
		GeneratorFactory: &defaultGeneratorFactory{},
		Interrupts:       &defaultInterruptFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultGeneratorFactory implements GeneratorFactory with the Gemini and
// OpenAI adapters.
type defaultGeneratorFactory struct{}

func (defaultGeneratorFactory) NewGenerator(ctx context.Context, provider Provider, apiKey, model string) (generate.Generator, error) {
	switch {
	case provider.IsOpenAI():
		return generate.NewOpenAIClient(apiKey, model), nil
	default:
		g, err := generate.NewGeminiClient(ctx, apiKey, model)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
}

// defaultInterruptFactory implements InterruptFactory with SIGINT/SIGTERM.
type defaultInterruptFactory struct{}

func (defaultInterruptFactory) Watch(parent context.Context, notice string) (Stopper, context.Context) {
	return interrupt.Watch(parent, interrupt.WithNotice(notice))
}

// Compile-time interface verification.
var (
	_ ConfigLoader     = (*defaultConfigLoader)(nil)
	_ GeneratorFactory = (*defaultGeneratorFactory)(nil)
	_ InterruptFactory = (*defaultInterruptFactory)(nil)
	_ Stopper          = (*interrupt.Stopper)(nil)
)
