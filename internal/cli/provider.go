package cli

import (
	"errors"
	"fmt"

	"github.com/alnah/postopt/internal/config"
	"github.com/alnah/postopt/internal/generate"
)

// Environment variables holding API keys.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Provider represents a validated generation provider.
// Zero value is invalid and must not be used.
// Use ParseProvider to create from user input, or the pre-parsed values.
type Provider struct {
	name string
}

// Compile-time interface compliance check.
var _ fmt.Stringer = Provider{}

// ErrInvalidProvider indicates an invalid provider name was specified.
var ErrInvalidProvider = errors.New("invalid provider")

// Pre-parsed providers.
var (
	GeminiProvider = Provider{name: config.ProviderGemini}
	OpenAIProvider = Provider{name: config.ProviderOpenAI}
)

// ParseProvider validates and parses a provider name string.
// Empty string returns an error; apply OrDefault to a zero Provider instead.
func ParseProvider(s string) (Provider, error) {
	switch s {
	case config.ProviderGemini:
		return GeminiProvider, nil
	case config.ProviderOpenAI:
		return OpenAIProvider, nil
	case "":
		return Provider{}, fmt.Errorf("provider cannot be empty: %w", ErrInvalidProvider)
	}
	return Provider{}, fmt.Errorf("unknown provider %q (use 'gemini' or 'openai'): %w", s, ErrInvalidProvider)
}

// MustParseProvider parses a provider name, panicking if invalid.
// Use only for constants and tests.
func MustParseProvider(s string) Provider {
	p, err := ParseProvider(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the provider name string.
// Returns empty string for zero value.
func (p Provider) String() string {
	return p.name
}

// IsZero returns true if no provider is set.
func (p Provider) IsZero() bool {
	return p.name == ""
}

// IsGemini returns true if this provider is Gemini.
func (p Provider) IsGemini() bool {
	return p.name == config.ProviderGemini
}

// IsOpenAI returns true if this provider is OpenAI.
func (p Provider) IsOpenAI() bool {
	return p.name == config.ProviderOpenAI
}

// OrDefault returns the provider, or GeminiProvider if zero.
func (p Provider) OrDefault() Provider {
	if p.IsZero() {
		return GeminiProvider
	}
	return p
}

// APIKeyEnv returns the environment variable holding this provider's key.
func (p Provider) APIKeyEnv() string {
	if p.IsOpenAI() {
		return EnvOpenAIAPIKey
	}
	return EnvGeminiAPIKey
}

// DefaultModel returns the model used when none is configured.
func (p Provider) DefaultModel() string {
	if p.IsOpenAI() {
		return generate.DefaultOpenAIModel
	}
	return generate.DefaultGeminiModel
}
