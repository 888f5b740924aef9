// Package interrupt turns Ctrl+C into a graceful stop. The first SIGINT or
// SIGTERM asks the running command to stop at its next safe point; a second
// one within AbortWindow ends the process.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// ExitCode is the process status after an abort (128 + SIGINT).
const ExitCode = 130

// AbortWindow is how soon a second signal must follow the first to abort.
const AbortWindow = 2 * time.Second

// DefaultNotice is printed on the first signal unless WithNotice is given.
const DefaultNotice = "Stopping. Press Ctrl+C again to abort."

const abortNotice = "Aborted."

// Stopper records stop requests. Its Requested method is the stop check
// handed to the batch runner.
type Stopper struct {
	requested atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	release   func()

	// owned by the watch goroutine
	windowStart time.Time

	notice string
	exit   func(int)
	now    func() time.Time
	out    io.Writer
}

type settings struct {
	signals <-chan os.Signal
	notice  string
	exit    func(int)
	now     func() time.Time
	out     io.Writer
}

// Option configures Watch.
type Option func(*settings)

// WithSignals reads signals from ch instead of subscribing to the process.
func WithSignals(ch <-chan os.Signal) Option {
	return func(s *settings) { s.signals = ch }
}

// WithNotice sets the line printed on the first signal.
func WithNotice(msg string) Option {
	return func(s *settings) {
		if msg != "" {
			s.notice = msg
		}
	}
}

// WithExit replaces os.Exit.
func WithExit(fn func(int)) Option {
	return func(s *settings) { s.exit = fn }
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *settings) { s.now = fn }
}

// WithOutput sets where notices go (default os.Stderr). w must tolerate
// writes from another goroutine.
func WithOutput(w io.Writer) Option {
	return func(s *settings) { s.out = w }
}

// Watch starts listening for stop signals. The returned context is canceled
// on the first signal and by Close.
func Watch(parent context.Context, opts ...Option) (*Stopper, context.Context) {
	cfg := settings{
		notice: DefaultNotice,
		exit:   os.Exit,
		now:    time.Now,
		out:    os.Stderr,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	release := func() {}
	if cfg.signals == nil {
		ch := make(chan os.Signal, 2)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		cfg.signals = ch
		release = func() { signal.Stop(ch) }
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Stopper{
		cancel:  cancel,
		done:    make(chan struct{}),
		release: release,
		notice:  cfg.notice,
		exit:    cfg.exit,
		now:     cfg.now,
		out:     cfg.out,
	}

	s.wg.Add(1)
	go s.watch(cfg.signals)

	return s, ctx
}

// Requested reports whether a stop signal arrived.
func (s *Stopper) Requested() bool {
	return s.requested.Load()
}

// Close stops listening and cancels the context. Signals arriving after
// Close are not observed. Safe to call more than once.
func (s *Stopper) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.release()
		s.cancel()
	})
}

func (s *Stopper) watch(signals <-chan os.Signal) {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			select {
			case <-s.done:
				return
			default:
			}
			if s.onSignal() {
				return
			}
		}
	}
}

// onSignal handles one signal and reports whether the process was aborted.
// A signal after the window has passed starts a new window.
func (s *Stopper) onSignal() bool {
	now := s.now()

	if s.requested.CompareAndSwap(false, true) || now.Sub(s.windowStart) > AbortWindow {
		s.windowStart = now
		s.cancel()
		_, _ = fmt.Fprintf(s.out, "\n%s\n", s.notice)
		return false
	}

	_, _ = fmt.Fprintf(s.out, "\n%s\n", abortNotice)
	s.exit(ExitCode)
	return true
}
