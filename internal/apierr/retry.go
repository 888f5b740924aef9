package apierr

import (
	"context"
	"math/rand/v2"
	"time"
)

// SleepFunc blocks for d or until ctx is done, returning ctx.Err() in the latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RandIntFunc returns a uniformly distributed integer in the closed range [lo, hi].
type RandIntFunc func(lo, hi int) int

// Sleep is the production SleepFunc backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RandInt is the production RandIntFunc.
func RandInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rand.IntN(hi-lo+1)
}

// RetryConfig holds retry parameters.
//
// Invalid values are normalized:
//   - MaxAttempts < 1 becomes 1 (single attempt)
//   - nil Backoff never retries
//   - nil Sleep becomes Sleep
type RetryConfig struct {
	MaxAttempts int

	// Backoff returns the wait before the next attempt and whether err is retryable.
	Backoff func(err error) (time.Duration, bool)

	// Sleep performs the wait. Tests inject a recorder here.
	Sleep SleepFunc

	// OnRetry is called before each wait with the attempt that failed (1-based).
	OnRetry func(attempt int, delay time.Duration, err error)
}

// normalize ensures all RetryConfig fields have valid values.
func (c *RetryConfig) normalize() {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.Backoff == nil {
		c.Backoff = func(error) (time.Duration, bool) { return 0, false }
	}
	if c.Sleep == nil {
		c.Sleep = Sleep
	}
}

// Retry executes fn up to cfg.MaxAttempts times.
// A non-retryable error, or any error on the final attempt, is returned as is.
// A success returns immediately. Cancellation during a wait returns ctx.Err().
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	cfg.normalize()

	var zero T
	for attempt := 1; ; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if attempt >= cfg.MaxAttempts {
			return zero, err
		}

		delay, retry := cfg.Backoff(err)
		if !retry {
			return zero, err
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, err)
		}
		if err := cfg.Sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}
