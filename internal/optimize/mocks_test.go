package optimize_test

import (
	"context"
	"sync"

	"github.com/alnah/postopt/internal/generate"
)

// mockTextGenerator records prompts and returns scripted results by call order.
// Once the script is exhausted the last entry repeats.
type mockTextGenerator struct {
	mu      sync.Mutex
	texts   []string
	errs    []error
	prompts []string
	configs []generate.Config
}

func (m *mockTextGenerator) GenerateWithRetry(_ context.Context, prompt string, cfg generate.Config) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	m.configs = append(m.configs, cfg)

	var text string
	var err error
	if len(m.texts) > 0 {
		text = m.texts[min(idx, len(m.texts)-1)]
	}
	if len(m.errs) > 0 {
		err = m.errs[min(idx, len(m.errs)-1)]
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (m *mockTextGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
