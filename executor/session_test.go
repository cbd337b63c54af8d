package executor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnoverse/regexr/internal/types"
)

const catastrophic = "(x+x+)+y"

var catastrophicText = strings.Repeat("x", 40)

func TestNewSession_Options(t *testing.T) {
	t.Parallel()
	assert.Equal(t, DefaultTimeout, NewSession().Timeout())
	assert.Equal(t, time.Second, NewSession(WithTimeout(time.Second)).Timeout())
	assert.Equal(t, DefaultTimeout, NewSession(WithTimeout(0), WithLogger(nil)).Timeout())
}

func TestSession_Match(t *testing.T) {
	t.Parallel()
	s := NewSession(WithLogger(zap.NewNop()))

	res, err := s.Match(context.Background(), `\w+`, FlagGlobal, "hello big world")
	require.NoError(t, err)
	assert.Equal(t, types.CodeNone, res.Code)
	require.Len(t, res.Matches, 3)
	assert.Equal(t, "world", res.Matches[2].Text)

	// the session is reusable once a run has delivered
	res, err = s.Match(context.Background(), "()", FlagGlobal, "abc")
	require.NoError(t, err)
	assert.Equal(t, types.CodeInfinite, res.Code)
	assert.Len(t, res.Matches, 1)
}

func TestSession_CompileError(t *testing.T) {
	t.Parallel()
	s := NewSession()
	_, err := s.Match(context.Background(), "(a", 0, "a")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrSuperseded))
}

func TestSession_Timeout(t *testing.T) {
	t.Parallel()
	s := NewSession(WithTimeout(20 * time.Millisecond))

	start := time.Now()
	res, err := s.Match(context.Background(), catastrophic, 0, catastrophicText)
	require.NoError(t, err)
	assert.Equal(t, types.CodeTimeout, res.Code)
	assert.Nil(t, res.Matches, "partial results are discarded")
	assert.Less(t, time.Since(start), BackstopTimeout)
}

func TestSession_Superseded(t *testing.T) {
	t.Parallel()
	s := NewSession(WithTimeout(5 * time.Second))

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = s.Match(context.Background(), catastrophic, 0, catastrophicText)
	}()

	// let the first request start before replacing it
	time.Sleep(50 * time.Millisecond)
	res, err := s.Match(context.Background(), "b", FlagGlobal, "abcb")
	require.NoError(t, err)
	assert.Len(t, res.Matches, 2)

	wg.Wait()
	assert.ErrorIs(t, firstErr, ErrSuperseded)
}

func TestSession_ContextCancel(t *testing.T) {
	t.Parallel()
	s := NewSession(WithTimeout(5 * time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := s.Match(ctx, catastrophic, 0, catastrophicText)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSession_OnlyLatestDelivers(t *testing.T) {
	t.Parallel()
	s := NewSession()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Match(context.Background(), "a", FlagGlobal, strings.Repeat("a", 1000))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrSuperseded)
		}
	}
}
