package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/postopt/internal/apierr"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// chatCompleter is an internal interface for OpenAI chat completion.
// *openai.Client implements this implicitly.
// This allows injecting mocks in tests.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance check.
var _ Generator = (*OpenAIGenerator)(nil)

// OpenAIGenerator generates text with OpenAI's chat completion API.
type OpenAIGenerator struct {
	client chatCompleter
	model  string
}

// NewOpenAIGenerator wraps a chat completion client.
// An empty model selects DefaultOpenAIModel.
func NewOpenAIGenerator(client chatCompleter, model string) *OpenAIGenerator {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIGenerator{client: client, model: model}
}

// NewOpenAIClient creates an OpenAI client for apiKey and wraps it.
func NewOpenAIClient(apiKey, model string) *OpenAIGenerator {
	return NewOpenAIGenerator(openai.NewClient(apiKey), model)
}

// Model returns the model name requests are sent to.
func (g *OpenAIGenerator) Model() string {
	return g.model
}

// Generate sends prompt as a single user message.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, cfg Config) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:         float32(cfg.Temperature),
		MaxCompletionTokens: cfg.MaxOutputTokens,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError maps OpenAI API errors to apierr sentinels.
// Uses errors.As for robust error type checking instead of string matching.
func classifyOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch code := apiErr.HTTPStatusCode; {
		case code == http.StatusTooManyRequests:
			// Exhausted billing quota looks like a 429 but never clears by waiting.
			if apiErr.Type == "insufficient_quota" || apiErr.Code == "insufficient_quota" {
				return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrQuotaExceeded)
			}
			return apierr.NewRateLimitError(apiErr.Message)
		case code == http.StatusPaymentRequired:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrQuotaExceeded)
		case code == http.StatusUnauthorized, code == http.StatusForbidden:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrAuthFailed)
		case code == http.StatusRequestTimeout, code == http.StatusGatewayTimeout, code >= 500:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrTimeout)
		case code >= 400:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrBadRequest)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}
	return err
}
