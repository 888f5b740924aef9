package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/alnah/postopt/internal/config"
	"github.com/alnah/postopt/internal/generate"
	"github.com/alnah/postopt/internal/lang"
	"github.com/alnah/postopt/internal/logging"
	"github.com/alnah/postopt/internal/optimize"
)

// Flag names shared by optimize and batch.
const (
	flagProvider    = "provider"
	flagModel       = "model"
	flagTemperature = "temperature"
	flagMaxTokens   = "max-tokens"
	flagRPM         = "rpm"
	flagLang        = "lang"
	flagOutput      = "output"
	flagPretty      = "pretty"
	flagQuiet       = "quiet"
	flagNoColor     = "no-color"
	flagLogLevel    = "log-level"
)

// generationFlags holds the flags shared by commands that call the model.
type generationFlags struct {
	provider    string
	model       string
	temperature float64
	maxTokens   int
	rpm         int
	language    string
	output      string
	pretty      bool
	quiet       bool
	noColor     bool
	logLevel    string
}

// register binds the shared flags to cmd.
func (f *generationFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.provider, flagProvider, "", "Generation provider: gemini, openai (default from config, else gemini)")
	fl.StringVar(&f.model, flagModel, "", "Model name (default depends on provider)")
	fl.Float64Var(&f.temperature, flagTemperature, generate.DefaultTemperature, "Sampling temperature (0.1-1.0)")
	fl.IntVar(&f.maxTokens, flagMaxTokens, generate.DefaultMaxOutputTokens, "Maximum output tokens (100-2000)")
	fl.IntVar(&f.rpm, flagRPM, config.DefaultRPM, "Client-side requests per minute, 0 disables pacing")
	fl.StringVarP(&f.language, flagLang, "l", "", "Output language (ISO 639-1 code, e.g., fr, pt-BR)")
	fl.StringVarP(&f.output, flagOutput, "o", "", "Write JSON to this file instead of stdout")
	fl.BoolVar(&f.pretty, flagPretty, false, "Indent JSON output")
	fl.BoolVarP(&f.quiet, flagQuiet, "q", false, "Do not print the human-readable report")
	fl.BoolVar(&f.noColor, flagNoColor, false, "Disable colors in the report")
	fl.StringVar(&f.logLevel, flagLogLevel, "", "Log level: debug, info, warn, error, disabled")
}

// settings is the resolved configuration for one command run.
type settings struct {
	provider  Provider
	model     string
	gen       generate.Config
	rpm       int
	language  lang.Language
	output    string
	outputDir string
	pretty    bool
	quiet     bool
	noColor   bool
	logLevel  zerolog.Level
}

// resolve merges config (file > env > defaults) with explicitly set flags.
func (f *generationFlags) resolve(cmd *cobra.Command, env *Env) (settings, error) {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return settings{}, fmt.Errorf("load config: %w", err)
	}

	changed := cmd.Flags().Changed

	providerName := cfg.Provider
	if changed(flagProvider) {
		providerName = f.provider
	}
	provider := Provider{}
	if providerName != "" {
		if provider, err = ParseProvider(providerName); err != nil {
			return settings{}, err
		}
	}
	provider = provider.OrDefault()

	s := settings{
		provider:  provider,
		model:     cfg.Model,
		gen:       generate.Config{Temperature: cfg.Temperature, MaxOutputTokens: cfg.MaxTokens},
		rpm:       cfg.RequestsPerMinute,
		output:    f.output,
		outputDir: cfg.OutputDir,
		pretty:    f.pretty,
		quiet:     f.quiet,
		noColor:   f.noColor,
	}
	if s.gen == (generate.Config{}) {
		s.gen = generate.DefaultConfig()
	}

	// A configured model belongs to the configured provider.
	if provider.String() != cfg.Provider && cfg.Provider != "" {
		s.model = ""
	}
	if changed(flagModel) {
		s.model = f.model
	}
	if changed(flagTemperature) {
		s.gen.Temperature = f.temperature
	}
	if changed(flagMaxTokens) {
		s.gen.MaxOutputTokens = f.maxTokens
	}
	if changed(flagRPM) {
		s.rpm = f.rpm
	}
	if err := s.gen.Validate(); err != nil {
		return settings{}, err
	}

	if s.language, err = lang.Parse(f.language); err != nil {
		return settings{}, err
	}

	level := cfg.LogLevel
	if changed(flagLogLevel) {
		level = f.logLevel
	}
	if s.logLevel, err = logging.ParseLevel(level); err != nil {
		return settings{}, err
	}

	return s, nil
}

// logger builds the stderr logger for s.
func (s settings) logger(env *Env) zerolog.Logger {
	return logging.New(env.Stderr, s.logLevel, !colorEnabled(env.Stderr, s.noColor))
}

// apiKey returns the provider's API key from the environment.
func (s settings) apiKey(env *Env) (string, error) {
	name := s.provider.APIKeyEnv()
	key := env.Getenv(name)
	if key == "" {
		return "", fmt.Errorf("%w: %s (set it with: export %s=...)", ErrAPIKeyMissing, name, name)
	}
	return key, nil
}

// newOptimizer wires the generator, retry client and pipeline for s.
func newOptimizer(ctx context.Context, env *Env, s settings, logger zerolog.Logger) (*optimize.Optimizer, error) {
	key, err := s.apiKey(env)
	if err != nil {
		return nil, err
	}

	model := s.model
	if model == "" {
		model = s.provider.DefaultModel()
	}

	gen, err := env.GeneratorFactory.NewGenerator(ctx, s.provider, key, model)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("provider", s.provider.String()).
		Str("model", model).
		Float64("temperature", s.gen.Temperature).
		Int("max_tokens", s.gen.MaxOutputTokens).
		Int("rpm", s.rpm).
		Msg("generator ready")

	client := generate.NewClient(gen,
		generate.WithSleep(env.Sleep),
		generate.WithLogger(logger),
		generate.WithRequestsPerMinute(s.rpm),
	)

	return optimize.New(client, s.gen,
		optimize.WithLanguage(s.language),
		optimize.WithLogger(logger),
	), nil
}
