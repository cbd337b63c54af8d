package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gnoverse/regexr/internal/types"
)

// DefaultTimeout is the window a run gets once its worker is ready.
const DefaultTimeout = 250 * time.Millisecond

// ErrSuperseded is returned by a run that was replaced by a newer request on
// the same session before it could deliver.
var ErrSuperseded = errors.New("superseded by a newer request")

// Session serialises match requests: a new request cancels the one in
// flight, and only the latest request can deliver a result.
type Session struct {
	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	timeout time.Duration
	logger  *zap.Logger
}

type Option func(*Session)

// WithTimeout sets the per-run window. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Timeout returns the configured run window.
func (s *Session) Timeout() time.Duration { return s.timeout }

type outcome struct {
	res Result
	err error
}

// Match compiles source with flags and executes it over text on a worker
// goroutine. The timeout window starts once the worker has compiled the
// expression. On expiry the result is {nil, timeout} and partial matches
// are discarded. A call that is replaced by a later Match returns
// ErrSuperseded; a call whose ctx ends returns ctx.Err().
func (s *Session) Match(ctx context.Context, source string, flags Flags, text string) (Result, error) {
	runCtx, gen := s.begin(ctx)
	defer s.end(gen)

	ready := make(chan struct{})
	done := make(chan outcome, 1)
	go s.work(runCtx, source, flags, text, ready, done)

	select {
	case <-ready:
	case out := <-done:
		return s.deliver(gen, out)
	case <-runCtx.Done():
		return Result{}, s.interrupted(ctx)
	}

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		return s.deliver(gen, out)
	case <-timer.C:
		s.logger.Debug("match timed out",
			zap.String("pattern", source),
			zap.Duration("timeout", s.timeout))
		return Result{Code: types.CodeTimeout}, nil
	case <-runCtx.Done():
		return Result{}, s.interrupted(ctx)
	}
}

func (s *Session) begin(ctx context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return runCtx, s.gen
}

// end releases the run's context if it is still the current one.
func (s *Session) end(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen == gen && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// deliver hands out a finished run unless a newer request has started.
func (s *Session) deliver(gen uint64, out outcome) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return Result{}, ErrSuperseded
	}
	return out.res, out.err
}

func (s *Session) interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrSuperseded
}

func (s *Session) work(ctx context.Context, source string, flags Flags, text string, ready chan<- struct{}, done chan<- outcome) {
	expr, err := Compile(source, flags)
	if err != nil {
		done <- outcome{err: fmt.Errorf("session: %w", err)}
		return
	}
	close(ready)

	res := Execute(ctx, expr, text)
	if ctx.Err() != nil {
		return
	}
	done <- outcome{res: res}
}
