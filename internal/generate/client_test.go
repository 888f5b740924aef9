package generate_test

// Coverage Notes:
// - Retry behavior is asserted through a recording sleeper; nothing sleeps for real.
// - Concurrency test checks the one-call-in-flight guarantee.

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/postopt/internal/apierr"
	"github.com/alnah/postopt/internal/generate"
)

func perMinute() error { return &apierr.RateLimitError{Kind: apierr.LimitPerMinute, Message: "GenerateRequestsPerMinute"} }
func perDay() error    { return &apierr.RateLimitError{Kind: apierr.LimitPerDay, Message: "GenerateRequestsPerDay"} }

// ---------------------------------------------------------------------------
// TestClient_GenerateWithRetry - retry policy
// ---------------------------------------------------------------------------

func TestClient_GenerateWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("success trims whitespace", func(t *testing.T) {
		t.Parallel()

		gen := &mockGenerator{results: []mockResult{{text: "\n  optimized post!  \n"}}}
		sleeper := &recordingSleeper{}
		c := generate.NewClient(gen, generate.WithSleep(sleeper.Sleep))

		got, err := c.GenerateWithRetry(context.Background(), "prompt", generate.DefaultConfig())
		if err != nil {
			t.Fatalf("GenerateWithRetry() unexpected error: %v", err)
		}
		if got != "optimized post!" {
			t.Errorf("got %q, want %q", got, "optimized post!")
		}
		if gen.CallCount() != 1 {
			t.Errorf("calls = %d, want 1", gen.CallCount())
		}
		if len(sleeper.Delays()) != 0 {
			t.Errorf("waits = %v, want none", sleeper.Delays())
		}
	})

	t.Run("forwards prompt and config", func(t *testing.T) {
		t.Parallel()

		gen := &mockGenerator{results: []mockResult{{text: "ok"}}}
		c := generate.NewClient(gen)
		cfg := generate.Config{Temperature: 0.3, MaxOutputTokens: 500}

		if _, err := c.GenerateWithRetry(context.Background(), "the prompt", cfg); err != nil {
			t.Fatalf("GenerateWithRetry() unexpected error: %v", err)
		}
		if gen.prompts[0] != "the prompt" {
			t.Errorf("prompt = %q, want %q", gen.prompts[0], "the prompt")
		}
		if gen.configs[0] != cfg {
			t.Errorf("config = %+v, want %+v", gen.configs[0], cfg)
		}
	})

	t.Run("per-minute twice then success", func(t *testing.T) {
		t.Parallel()

		gen := &mockGenerator{results: []mockResult{
			{err: perMinute()},
			{err: perMinute()},
			{text: "third time lucky"},
		}}
		sleeper := &recordingSleeper{}
		c := generate.NewClient(gen, generate.WithSleep(sleeper.Sleep))

		got, err := c.GenerateWithRetry(context.Background(), "p", generate.DefaultConfig())
		if err != nil {
			t.Fatalf("GenerateWithRetry() unexpected error: %v", err)
		}
		if got != "third time lucky" {
			t.Errorf("got %q, want %q", got, "third time lucky")
		}
		delays := sleeper.Delays()
		if len(delays) != 2 {
			t.Fatalf("waits = %v, want exactly 2", delays)
		}
		for _, d := range delays {
			if d < 8*time.Second || d > 11*time.Second {
				t.Errorf("wait %v outside [8s, 11s]", d)
			}
		}
	})

	t.Run("per-day always fails after three attempts", func(t *testing.T) {
		t.Parallel()

		third := perDay()
		gen := &mockGenerator{results: []mockResult{{err: perDay()}, {err: perDay()}, {err: third}}}
		sleeper := &recordingSleeper{}
		c := generate.NewClient(gen, generate.WithSleep(sleeper.Sleep))

		_, err := c.GenerateWithRetry(context.Background(), "p", generate.DefaultConfig())
		if err != third {
			t.Errorf("error = %v, want the third attempt's error", err)
		}
		if !errors.Is(err, apierr.ErrRateLimit) {
			t.Errorf("errors.Is(err, ErrRateLimit) = false")
		}
		if gen.CallCount() != 3 {
			t.Errorf("calls = %d, want 3", gen.CallCount())
		}
		delays := sleeper.Delays()
		if len(delays) != 2 || delays[0] != 3600*time.Second || delays[1] != 3600*time.Second {
			t.Errorf("waits = %v, want two waits of 3600s", delays)
		}
	})

	t.Run("unspecified kind uses doubled base with wide jitter", func(t *testing.T) {
		t.Parallel()

		gen := &mockGenerator{results: []mockResult{
			{err: apierr.NewRateLimitError("429 Too Many Requests")},
			{text: "ok"},
		}}
		sleeper := &recordingSleeper{}
		c := generate.NewClient(gen,
			generate.WithSleep(sleeper.Sleep),
			generate.WithRandInt(func(_, hi int) int { return hi }),
		)

		if _, err := c.GenerateWithRetry(context.Background(), "p", generate.DefaultConfig()); err != nil {
			t.Fatalf("GenerateWithRetry() unexpected error: %v", err)
		}
		if d := sleeper.Delays(); len(d) != 1 || d[0] != 27*time.Second {
			t.Errorf("waits = %v, want [27s]", d)
		}
	})

	t.Run("non-rate-limit error propagates immediately", func(t *testing.T) {
		t.Parallel()

		gen := &mockGenerator{results: []mockResult{{err: apierr.ErrAuthFailed}}}
		sleeper := &recordingSleeper{}
		c := generate.NewClient(gen, generate.WithSleep(sleeper.Sleep))

		_, err := c.GenerateWithRetry(context.Background(), "p", generate.DefaultConfig())
		if !errors.Is(err, apierr.ErrAuthFailed) {
			t.Errorf("error = %v, want ErrAuthFailed", err)
		}
		if gen.CallCount() != 1 {
			t.Errorf("calls = %d, want 1", gen.CallCount())
		}
		if len(sleeper.Delays()) != 0 {
			t.Errorf("waits = %v, want none", sleeper.Delays())
		}
	})

	t.Run("quota exhaustion is not retried", func(t *testing.T) {
		t.Parallel()

		gen := &mockGenerator{results: []mockResult{{err: apierr.ErrQuotaExceeded}}}
		c := generate.NewClient(gen, generate.WithSleep((&recordingSleeper{}).Sleep))

		_, err := c.GenerateWithRetry(context.Background(), "p", generate.DefaultConfig())
		if !errors.Is(err, apierr.ErrQuotaExceeded) || gen.CallCount() != 1 {
			t.Errorf("error = %v, calls = %d; want ErrQuotaExceeded after 1 call", err, gen.CallCount())
		}
	})

	t.Run("invalid config never calls generator", func(t *testing.T) {
		t.Parallel()

		gen := &mockGenerator{results: []mockResult{{text: "ok"}}}
		c := generate.NewClient(gen)

		_, err := c.GenerateWithRetry(context.Background(), "p", generate.Config{Temperature: 3, MaxOutputTokens: 1000})
		if !errors.Is(err, generate.ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
		if gen.CallCount() != 0 {
			t.Errorf("calls = %d, want 0", gen.CallCount())
		}
	})

	t.Run("cancellation during wait stops retrying", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		gen := &mockGenerator{results: []mockResult{{err: perMinute()}, {text: "never"}}}
		sleep := func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}
		c := generate.NewClient(gen, generate.WithSleep(sleep))

		_, err := c.GenerateWithRetry(ctx, "p", generate.DefaultConfig())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if gen.CallCount() != 1 {
			t.Errorf("calls = %d, want 1", gen.CallCount())
		}
	})

	t.Run("logs each retry at warn level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := zerolog.New(&buf).Level(zerolog.WarnLevel)
		gen := &mockGenerator{results: []mockResult{{err: perMinute()}, {err: perMinute()}, {text: "ok"}}}
		c := generate.NewClient(gen,
			generate.WithSleep((&recordingSleeper{}).Sleep),
			generate.WithLogger(logger),
		)

		if _, err := c.GenerateWithRetry(context.Background(), "p", generate.DefaultConfig()); err != nil {
			t.Fatalf("GenerateWithRetry() unexpected error: %v", err)
		}
		out := buf.String()
		if n := strings.Count(out, `"level":"warn"`); n != 2 {
			t.Errorf("warn lines = %d, want 2\n%s", n, out)
		}
		if !strings.Contains(out, `"kind":"per-minute"`) {
			t.Errorf("log does not carry the limit kind:\n%s", out)
		}
	})
}

// ---------------------------------------------------------------------------
// TestClient_Concurrency - one call in flight
// ---------------------------------------------------------------------------

// blockingGenerator tracks how many calls overlap.
type blockingGenerator struct {
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	calls       atomic.Int32
}

func (g *blockingGenerator) Generate(context.Context, string, generate.Config) (string, error) {
	n := g.inFlight.Add(1)
	for {
		old := g.maxInFlight.Load()
		if n <= old || g.maxInFlight.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	g.inFlight.Add(-1)
	g.calls.Add(1)
	return "ok", nil
}

func TestClient_Concurrency(t *testing.T) {
	t.Parallel()

	gen := &blockingGenerator{}
	c := generate.NewClient(gen)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GenerateWithRetry(context.Background(), "p", generate.DefaultConfig()); err != nil {
				t.Errorf("GenerateWithRetry() unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := gen.calls.Load(); got != 8 {
		t.Errorf("calls = %d, want 8", got)
	}
	if got := gen.maxInFlight.Load(); got != 1 {
		t.Errorf("max concurrent calls = %d, want 1", got)
	}
}

// ---------------------------------------------------------------------------
// TestClient_RequestsPerMinute - client-side pacing
// ---------------------------------------------------------------------------

func TestClient_RequestsPerMinute(t *testing.T) {
	t.Parallel()

	t.Run("second call waits for the pacing interval", func(t *testing.T) {
		t.Parallel()

		gen := &mockGenerator{results: []mockResult{{text: "ok"}}}
		c := generate.NewClient(gen, generate.WithRequestsPerMinute(1))

		if _, err := c.GenerateWithRetry(context.Background(), "p", generate.DefaultConfig()); err != nil {
			t.Fatalf("first call unexpected error: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if _, err := c.GenerateWithRetry(ctx, "p", generate.DefaultConfig()); err == nil {
			t.Fatal("second call within the pacing interval succeeded, want error")
		}
		if gen.CallCount() != 1 {
			t.Errorf("calls = %d, want 1", gen.CallCount())
		}
	})

	t.Run("zero disables pacing", func(t *testing.T) {
		t.Parallel()

		gen := &mockGenerator{results: []mockResult{{text: "ok"}}}
		c := generate.NewClient(gen, generate.WithRequestsPerMinute(0))

		for range 5 {
			if _, err := c.GenerateWithRetry(context.Background(), "p", generate.DefaultConfig()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if gen.CallCount() != 5 {
			t.Errorf("calls = %d, want 5", gen.CallCount())
		}
	})
}
