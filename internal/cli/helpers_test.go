package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/postopt/internal/config"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	configLoader *mockConfigLoader
	generators   *mockGeneratorFactory
	interrupts   *mockInterruptFactory
	stdout       *syncBuffer
	stderr       *syncBuffer
	sleeps       *sleepRecorder
}

func newTestMocks() *testMocks {
	return &testMocks{
		configLoader: &mockConfigLoader{},
		generators:   &mockGeneratorFactory{generator: &mockGenerator{}},
		interrupts:   &mockInterruptFactory{stopper: &mockStopper{}},
		stdout:       &syncBuffer{},
		stderr:       &syncBuffer{},
		sleeps:       &sleepRecorder{},
	}
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

// testEnvOption configures testEnv.
type testEnvOption func(*Env, *testMocks)

// withGetenv replaces the API-key environment.
func withGetenv(fn func(string) string) testEnvOption {
	return func(e *Env, _ *testMocks) { e.Getenv = fn }
}

// withConfig makes the config loader return cfg.
func withConfig(cfg config.Config) testEnvOption {
	return func(_ *Env, m *testMocks) {
		m.configLoader.LoadFunc = func() (config.Config, error) { return cfg, nil }
	}
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env and the mocks for assertions.
func testEnv(opts ...testEnvOption) (*Env, *testMocks) {
	mocks := newTestMocks()
	env := &Env{
		Stdout:           mocks.stdout,
		Stderr:           mocks.stderr,
		Getenv:           defaultTestEnv,
		Now:              fixedTime(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)),
		Sleep:            mocks.sleeps.Sleep,
		ConfigLoader:     mocks.configLoader,
		GeneratorFactory: mocks.generators,
		Interrupts:       mocks.interrupts,
	}
	for _, opt := range opts {
		opt(env, mocks)
	}
	return env, mocks
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// sleepRecorder is an apierr.SleepFunc that records waits without sleeping.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *sleepRecorder) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

// fixedTime returns a function that always returns the given time.
func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// defaultTestEnv returns API keys for both Gemini and OpenAI.
func defaultTestEnv(key string) string {
	switch key {
	case EnvGeminiAPIKey:
		return "test-gemini-key"
	case EnvOpenAIAPIKey:
		return "test-openai-key"
	default:
		return ""
	}
}

// execute runs cmd with args, the way the root command would.
func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.ExecuteContext(context.Background())
}

// writeTestFile creates a file with content in a temp dir and returns its path.
func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}
