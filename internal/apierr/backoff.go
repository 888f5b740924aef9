package apierr

import "time"

// Rate-limit backoff schedule.
// The base delay matches a 10 requests/minute ceiling (one request every 6s).
const (
	RateLimitBaseDelay = 6 * time.Second
	DailyQuotaDelay    = time.Hour
)

// Jitter ranges, in whole seconds, added to the base delay.
const (
	perMinuteJitterMin   = 2
	perMinuteJitterMax   = 5
	unspecifiedJitterMin = 5
	unspecifiedJitterMax = 15
)

// RateLimitBackoff chooses the wait before retrying a rate-limited call.
// Only rate-limit errors are retryable.
type RateLimitBackoff struct {
	RandInt RandIntFunc
}

// Delay implements RetryConfig.Backoff.
//
//	per-minute:  6s + rand[2,5]s
//	per-day:     3600s
//	unspecified: 12s + rand[5,15]s
func (b RateLimitBackoff) Delay(err error) (time.Duration, bool) {
	kind, ok := RateLimitKind(err)
	if !ok {
		return 0, false
	}

	randInt := b.RandInt
	if randInt == nil {
		randInt = RandInt
	}

	switch kind {
	case LimitPerMinute:
		return RateLimitBaseDelay + seconds(randInt(perMinuteJitterMin, perMinuteJitterMax)), true
	case LimitPerDay:
		return DailyQuotaDelay, true
	default:
		return 2*RateLimitBaseDelay + seconds(randInt(unspecifiedJitterMin, unspecifiedJitterMax)), true
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
