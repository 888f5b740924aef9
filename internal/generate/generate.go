// Package generate calls a remote generative-language model and applies
// the rate-limit retry policy around it.
//
// Adapters (Gemini, OpenAI) classify provider failures into apierr
// sentinels. Client serializes calls and retries only rate-limit errors.
package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrEmptyResponse indicates the model returned no usable text.
var ErrEmptyResponse = errors.New("empty response from model")

// ErrInvalidConfig indicates generation parameters are out of range.
var ErrInvalidConfig = errors.New("invalid generation config")

// Generator is the remote generation seam.
// Implementations return *apierr.RateLimitError for throttling responses
// and apierr sentinels for other classified failures.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg Config) (string, error)
}

// Default generation parameters.
const (
	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 1000
)

// Config holds per-call generation parameters.
type Config struct {
	Temperature     float64 `validate:"gte=0.1,lte=1"`
	MaxOutputTokens int     `validate:"gte=100,lte=2000"`
}

// DefaultConfig returns the default generation parameters.
func DefaultConfig() Config {
	return Config{
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the parameter ranges: temperature in [0.1, 1.0],
// max output tokens in [100, 2000].
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s must satisfy %s=%s (got %v): %w",
				fe.Field(), fe.Tag(), fe.Param(), fe.Value(), ErrInvalidConfig)
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
