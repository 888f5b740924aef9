// Package config loads persistent settings from a key=value file in the
// user's config directory, layered over environment variables and defaults.
//
// Precedence, highest first: config file, environment, defaults.
// Command-line flags are applied on top by the caller.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config keys.
const (
	KeyProvider    = "provider"
	KeyModel       = "model"
	KeyTemperature = "temperature"
	KeyMaxTokens   = "max-tokens"
	KeyRPM         = "rpm"
	KeyOutputDir   = "output-dir"
	KeyLogLevel    = "log-level"
)

// Environment variable fallbacks.
const (
	EnvProvider    = "POSTOPT_PROVIDER"
	EnvModel       = "POSTOPT_MODEL"
	EnvGeminiModel = "GEMINI_MODEL"
	EnvTemperature = "POSTOPT_TEMPERATURE"
	EnvMaxTokens   = "POSTOPT_MAX_TOKENS"
	EnvRPM         = "POSTOPT_RPM"
	EnvOutputDir   = "POSTOPT_OUTPUT_DIR"
	EnvLogLevel    = "POSTOPT_LOG_LEVEL"
)

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Defaults applied when neither the file nor the environment set a key.
const (
	DefaultProvider    = ProviderGemini
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
	DefaultRPM         = 10
	DefaultLogLevel    = "warn"
)

// ErrUnknownKey indicates a key that is not a supported setting.
var ErrUnknownKey = errors.New("unknown config key")

// ErrInvalidValue indicates a setting value outside its allowed range.
var ErrInvalidValue = errors.New("invalid config value")

// Output directory errors.
var (
	ErrNotDirectory = errors.New("path is not a directory")
	ErrNotWritable  = errors.New("directory is not writable")
)

// keys lists every supported key in display order.
var keys = []string{
	KeyProvider,
	KeyModel,
	KeyTemperature,
	KeyMaxTokens,
	KeyRPM,
	KeyOutputDir,
	KeyLogLevel,
}

// envVars maps keys to the environment variable that backs them.
var envVars = map[string]string{
	KeyProvider:    EnvProvider,
	KeyModel:       EnvModel,
	KeyTemperature: EnvTemperature,
	KeyMaxTokens:   EnvMaxTokens,
	KeyRPM:         EnvRPM,
	KeyOutputDir:   EnvOutputDir,
	KeyLogLevel:    EnvLogLevel,
}

// Keys returns the supported config keys in a stable order.
func Keys() []string {
	return slices.Clone(keys)
}

// EnvVar returns the environment variable backing key, or "".
func EnvVar(key string) string {
	return envVars[key]
}

// Config holds the resolved settings.
type Config struct {
	Provider          string  `validate:"oneof=gemini openai"`
	Model             string  // empty selects the provider default
	Temperature       float64 `validate:"gte=0.1,lte=1"`
	MaxTokens         int     `validate:"gte=100,lte=2000"`
	RequestsPerMinute int     `validate:"gte=0"`
	OutputDir         string
	LogLevel          string `validate:"oneof=debug info warn error disabled"`
}

// envConfig is the environment layer, defaults included.
type envConfig struct {
	Provider          string  `envconfig:"POSTOPT_PROVIDER" default:"gemini"`
	Model             string  `envconfig:"POSTOPT_MODEL"`
	GeminiModel       string  `envconfig:"GEMINI_MODEL"`
	Temperature       float64 `envconfig:"POSTOPT_TEMPERATURE" default:"0.7"`
	MaxTokens         int     `envconfig:"POSTOPT_MAX_TOKENS" default:"1000"`
	RequestsPerMinute int     `envconfig:"POSTOPT_RPM" default:"10"`
	OutputDir         string  `envconfig:"POSTOPT_OUTPUT_DIR"`
	LogLevel          string  `envconfig:"POSTOPT_LOG_LEVEL" default:"warn"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/postopt.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "postopt"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "postopt"), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the environment, then overlays the config file.
// A missing file is not an error.
func Load() (Config, error) {
	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	cfg := Config{
		Provider:          env.Provider,
		Model:             env.Model,
		Temperature:       env.Temperature,
		MaxTokens:         env.MaxTokens,
		RequestsPerMinute: env.RequestsPerMinute,
		OutputDir:         env.OutputDir,
		LogLevel:          env.LogLevel,
	}

	p, err := path()
	if err != nil {
		return cfg, err
	}

	data, err := parseFile(p)
	switch {
	case err == nil:
		if err := cfg.apply(data); err != nil {
			return cfg, fmt.Errorf("%s: %w", p, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	// GEMINI_MODEL is the lowest-precedence model source, Gemini only.
	if cfg.Model == "" && cfg.Provider == ProviderGemini {
		cfg.Model = env.GeminiModel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// apply overlays file values onto c. Unknown keys are ignored so older
// binaries can read newer files.
func (c *Config) apply(data map[string]string) error {
	for key, value := range data {
		if value == "" {
			continue
		}
		switch key {
		case KeyProvider:
			c.Provider = value
		case KeyModel:
			c.Model = value
		case KeyTemperature:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("%s=%q: %w", key, value, ErrInvalidValue)
			}
			c.Temperature = f
		case KeyMaxTokens:
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s=%q: %w", key, value, ErrInvalidValue)
			}
			c.MaxTokens = n
		case KeyRPM:
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%s=%q: %w", key, value, ErrInvalidValue)
			}
			c.RequestsPerMinute = n
		case KeyOutputDir:
			c.OutputDir = ExpandPath(value)
		case KeyLogLevel:
			c.LogLevel = value
		}
	}
	return nil
}

// Validate checks every field against its allowed range.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: %v does not satisfy %s=%s: %w",
				fe.Field(), fe.Value(), fe.Tag(), fe.Param(), ErrInvalidValue)
		}
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}

// valueRules holds the validator tag checked by ValidateValue per key.
var valueRules = map[string]string{
	KeyProvider:    "oneof=gemini openai",
	KeyModel:       "required",
	KeyTemperature: "numeric",
	KeyMaxTokens:   "number",
	KeyRPM:         "number",
	KeyLogLevel:    "oneof=debug info warn error disabled",
}

// ValidateValue checks a value before it is saved with `config set`.
// It returns the value to store: output-dir is expanded and created.
func ValidateValue(key, value string) (string, error) {
	if !slices.Contains(keys, key) {
		return "", fmt.Errorf("%q (valid keys: %s): %w", key, strings.Join(keys, ", "), ErrUnknownKey)
	}

	if key == KeyOutputDir {
		expanded := ExpandPath(value)
		if err := EnsureOutputDir(expanded); err != nil {
			return "", fmt.Errorf("invalid output-dir: %w", err)
		}
		return expanded, nil
	}

	if err := validate.Var(value, valueRules[key]); err != nil {
		return "", fmt.Errorf("%s=%q: %w", key, value, ErrInvalidValue)
	}

	// Range checks reuse the struct rules.
	candidate := defaults()
	if err := candidate.apply(map[string]string{key: value}); err != nil {
		return "", err
	}
	if err := candidate.Validate(); err != nil {
		return "", fmt.Errorf("%s=%q: %w", key, value, err)
	}
	return value, nil
}

func defaults() Config {
	return Config{
		Provider:          DefaultProvider,
		Temperature:       DefaultTemperature,
		MaxTokens:         DefaultMaxTokens,
		RequestsPerMinute: DefaultRPM,
		LogLevel:          DefaultLogLevel,
	}
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save writes a single key=value to the config file.
// Creates the config directory and file if they don't exist.
// Preserves existing key=value pairs but discards comments.
func Save(key, value string) error {
	p, err := path()
	if err != nil {
		return err
	}

	d := filepath.Dir(p)
	if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFile(p, existing)
}

// writeFile writes the config map to a file, keys sorted.
func writeFile(p string, data map[string]string) error {
	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for _, key := range slices.Sorted(maps.Keys(data)) {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config file values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// ResolveOutputPath resolves the final output path:
//  1. If output is absolute, use it as-is
//  2. If output is relative and outputDir is set, join them
//  3. Otherwise use output relative to the working directory
//
// All paths are cleaned using filepath.Clean.
func ResolveOutputPath(output, outputDir string) string {
	if filepath.IsAbs(output) || outputDir == "" {
		return filepath.Clean(output)
	}
	return filepath.Clean(filepath.Join(outputDir, output))
}

// EnsureOutputDir checks that d can hold output files, creating it if needed.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("output-dir cannot be empty")
	}

	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
				return fmt.Errorf("cannot create directory: %w", err)
			}
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s: %w", d, ErrNotDirectory)
	}

	// Check if writable by attempting to create a temp file.
	f, err := os.CreateTemp(d, ".postopt-write-test-*")
	if err != nil {
		return fmt.Errorf("%s: %w: %v", d, ErrNotWritable, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	return p
}

// Dir returns the configuration directory path.
func Dir() (string, error) {
	return dir()
}
