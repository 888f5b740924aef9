package cli

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/alnah/postopt/internal/config"
	"github.com/alnah/postopt/internal/generate"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock GeneratorFactory + Generator
// ---------------------------------------------------------------------------

type mockGeneratorFactory struct {
	NewGeneratorErr error // Error to return from NewGenerator

	mu        sync.Mutex
	calls     []generatorCall
	generator *mockGenerator
}

type generatorCall struct {
	Provider Provider
	APIKey   string
	Model    string
}

func (m *mockGeneratorFactory) NewGenerator(_ context.Context, provider Provider, apiKey, model string) (generate.Generator, error) {
	m.mu.Lock()
	m.calls = append(m.calls, generatorCall{Provider: provider, APIKey: apiKey, Model: model})
	m.mu.Unlock()

	if m.NewGeneratorErr != nil {
		return nil, m.NewGeneratorErr
	}
	if m.generator == nil {
		m.generator = &mockGenerator{}
	}
	return m.generator, nil
}

func (m *mockGeneratorFactory) Calls() []generatorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generatorCall(nil), m.calls...)
}

// mockGenerator answers every prompt through GenerateFunc, or with a fixed
// optimized post.
type mockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string, cfg generate.Config) (string, error)

	mu      sync.Mutex
	prompts []string
	configs []generate.Config
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string, cfg generate.Config) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.configs = append(m.configs, cfg)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, cfg)
	}
	return "  Fresh drop! Which one is yours? #summer #style  ", nil
}

func (m *mockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func (m *mockGenerator) Configs() []generate.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generate.Config(nil), m.configs...)
}

// ---------------------------------------------------------------------------
// Mock InterruptFactory + Stopper
// ---------------------------------------------------------------------------

type mockInterruptFactory struct {
	stopper *mockStopper
	notice  string
}

func (m *mockInterruptFactory) Watch(parent context.Context, notice string) (Stopper, context.Context) {
	if m.stopper == nil {
		m.stopper = &mockStopper{}
	}
	m.notice = notice
	ctx, cancel := context.WithCancel(parent)
	m.stopper.cancel = cancel
	return m.stopper, ctx
}

// mockStopper simulates Ctrl+C with Interrupt.
type mockStopper struct {
	requested atomic.Bool
	closed    atomic.Bool
	cancel    context.CancelFunc
}

func (m *mockStopper) Interrupt() {
	m.requested.Store(true)
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *mockStopper) Requested() bool { return m.requested.Load() }

func (m *mockStopper) Close() {
	m.closed.Store(true)
	if m.cancel != nil {
		m.cancel()
	}
}
