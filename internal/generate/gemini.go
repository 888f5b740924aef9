package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/alnah/postopt/internal/apierr"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the subset of the genai Models service used here.
// client.Models implements it; tests inject a fake.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Compile-time interface compliance check.
var _ Generator = (*GeminiGenerator)(nil)

// GeminiGenerator generates text with the Google Gemini API.
type GeminiGenerator struct {
	models contentGenerator
	model  string
}

// NewGeminiGenerator wraps a genai Models service.
// An empty model selects DefaultGeminiModel.
func NewGeminiGenerator(models contentGenerator, model string) *GeminiGenerator {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGenerator{models: models, model: model}
}

// NewGeminiClient creates a Gemini API client for apiKey and wraps it.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return NewGeminiGenerator(client.Models, model), nil
}

// Model returns the model name requests are sent to.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate sends prompt as a single user turn.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, cfg Config) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(cfg.Temperature)),
		MaxOutputTokens: int32(cfg.MaxOutputTokens),
	})
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// classifyGeminiError maps genai errors to apierr sentinels.
// The SDK may surface APIError by value or by pointer.
func classifyGeminiError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		return classifyGeminiAPIError(*apiErrPtr, err)
	case errors.As(err, &apiErr):
		return classifyGeminiAPIError(apiErr, err)
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	// Untyped transport errors still carry the status code in their text.
	if msg := err.Error(); strings.Contains(msg, "429") {
		return apierr.NewRateLimitError(msg)
	}
	return err
}

func classifyGeminiAPIError(apiErr genai.APIError, orig error) error {
	msg := apiErr.Message
	if msg == "" {
		msg = orig.Error()
	}

	switch code := apiErr.Code; {
	case code == http.StatusTooManyRequests:
		// The quota id (GenerateRequestsPerMinute/PerDay) lives in the details.
		return &apierr.RateLimitError{
			Kind:    apierr.ClassifyLimitKind(msg + " " + fmt.Sprint(apiErr.Details)),
			Message: msg,
		}
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, apierr.ErrAuthFailed)
	case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout, code >= 500:
		return fmt.Errorf("%s: %w", msg, apierr.ErrTimeout)
	case code >= 400:
		return fmt.Errorf("%s: %w", msg, apierr.ErrBadRequest)
	}
	return orig
}
