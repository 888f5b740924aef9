// Package apierr provides shared error sentinels and retry infrastructure
// for generation API clients. All provider-specific error types are
// classified into these sentinels at the adapter boundary.
//
// Providers map API failures to these errors using fmt.Errorf("%s: %w", msg, sentinel),
// or return a *RateLimitError for throttling responses.
// Callers check with errors.Is(err, apierr.ErrRateLimit) etc.
package apierr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for API interaction failures.
var (
	// ErrRateLimit indicates the API rate limit was exceeded (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the account quota was exhausted (billing issue, not retryable).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out or the server failed.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates API authentication failed (invalid key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")
)

// LimitKind identifies which quota a rate-limit error reports.
type LimitKind int

const (
	// LimitUnspecified is a rate limit whose quota could not be identified.
	LimitUnspecified LimitKind = iota
	// LimitPerMinute is the requests-per-minute quota.
	LimitPerMinute
	// LimitPerDay is the requests-per-day quota.
	LimitPerDay
)

// String returns the string representation of the LimitKind.
func (k LimitKind) String() string {
	switch k {
	case LimitPerMinute:
		return "per-minute"
	case LimitPerDay:
		return "per-day"
	case LimitUnspecified:
		return "unspecified"
	default:
		return fmt.Sprintf("LimitKind(%d)", int(k))
	}
}

// Quota identifiers reported by the Gemini API in 429 responses.
const (
	quotaPerMinute = "GenerateRequestsPerMinute"
	quotaPerDay    = "GenerateRequestsPerDay"
)

// ClassifyLimitKind infers the quota kind from a provider error message.
// Recognizes the Gemini quota identifiers and common per-minute/per-day phrasing.
func ClassifyLimitKind(text string) LimitKind {
	if strings.Contains(text, quotaPerMinute) {
		return LimitPerMinute
	}
	if strings.Contains(text, quotaPerDay) {
		return LimitPerDay
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "per min"), strings.Contains(lower, "(rpm)"):
		return LimitPerMinute
	case strings.Contains(lower, "per day"), strings.Contains(lower, "(rpd)"):
		return LimitPerDay
	}
	return LimitUnspecified
}

// RateLimitError is returned by generators when the remote service throttles
// a request. It matches ErrRateLimit with errors.Is.
type RateLimitError struct {
	Kind    LimitKind
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (%s)", ErrRateLimit, e.Kind)
	}
	return fmt.Sprintf("%s (%s): %s", ErrRateLimit, e.Kind, e.Message)
}

// Unwrap exposes ErrRateLimit so errors.Is(err, ErrRateLimit) holds.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimit
}

// NewRateLimitError classifies message and returns a *RateLimitError.
func NewRateLimitError(message string) *RateLimitError {
	return &RateLimitError{
		Kind:    ClassifyLimitKind(message),
		Message: message,
	}
}

// RateLimitKind reports the quota kind carried by err.
// ok is false when err is not a rate-limit error. A bare ErrRateLimit
// without a typed kind reports LimitUnspecified.
func RateLimitKind(err error) (kind LimitKind, ok bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.Kind, true
	}
	if errors.Is(err, ErrRateLimit) {
		return LimitUnspecified, true
	}
	return LimitUnspecified, false
}
