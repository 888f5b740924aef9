package generate_test

import (
	"context"
	"sync"
	"time"

	"github.com/alnah/postopt/internal/generate"
)

// mockGenerator returns scripted results in order, repeating the last one.
type mockGenerator struct {
	mu      sync.Mutex
	results []mockResult
	prompts []string
	configs []generate.Config
}

type mockResult struct {
	text string
	err  error
}

func (m *mockGenerator) Generate(_ context.Context, prompt string, cfg generate.Config) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	m.configs = append(m.configs, cfg)

	if len(m.results) == 0 {
		return "", nil
	}
	if idx >= len(m.results) {
		idx = len(m.results) - 1
	}
	r := m.results[idx]
	return r.text, r.err
}

func (m *mockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// recordingSleeper records requested waits without sleeping.
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *recordingSleeper) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}
