package generate

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/alnah/postopt/internal/apierr"
)

// MaxAttempts is the number of calls made for one prompt (1 + 2 retries).
const MaxAttempts = 3

// Client wraps a Generator with the rate-limit retry policy.
// At most one remote call is in flight per Client.
type Client struct {
	gen     Generator
	sleep   apierr.SleepFunc
	randInt apierr.RandIntFunc
	limiter *rate.Limiter
	sem     *semaphore.Weighted
	logger  zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithSleep sets the function used to wait between attempts.
func WithSleep(fn apierr.SleepFunc) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithRandInt sets the jitter source.
func WithRandInt(fn apierr.RandIntFunc) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.randInt = fn
		}
	}
}

// WithLogger sets the logger used for retry warnings.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRequestsPerMinute paces remote calls to n per minute.
// n <= 0 disables pacing.
func WithRequestsPerMinute(n int) ClientOption {
	return func(c *Client) {
		if n <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
}

// NewClient creates a Client around gen.
func NewClient(gen Generator, opts ...ClientOption) *Client {
	c := &Client{
		gen:     gen,
		sleep:   apierr.Sleep,
		randInt: apierr.RandInt,
		sem:     semaphore.NewWeighted(1),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateWithRetry sends prompt and returns the generated text trimmed of
// surrounding whitespace.
//
// Only rate-limit errors are retried, up to MaxAttempts calls in total:
//
//	per-minute:  6s + rand[2,5]s
//	per-day:     3600s
//	unspecified: 12s + rand[5,15]s
//
// Any other error, or an error on the final attempt, is returned as is.
// cfg is validated before the first call.
func (c *Client) GenerateWithRetry(ctx context.Context, prompt string, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	retryCfg := apierr.RetryConfig{
		MaxAttempts: MaxAttempts,
		Backoff:     apierr.RateLimitBackoff{RandInt: c.randInt}.Delay,
		Sleep:       c.sleep,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			kind, _ := apierr.RateLimitKind(err)
			c.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("next_attempt", attempt+1).
				Stringer("kind", kind).
				Dur("delay", delay).
				Msg("rate limited, waiting before retry")
		},
	}

	attempt := 0
	text, err := apierr.Retry(ctx, retryCfg, func() (string, error) {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}
		c.logger.Debug().Int("attempt", attempt).Int("prompt_length", len(prompt)).Msg("calling generator")
		return c.gen.Generate(ctx, prompt, cfg)
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
