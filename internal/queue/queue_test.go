package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/article-engine/internal/cost"
	"github.com/jonathan/article-engine/internal/pipeline"
	"github.com/jonathan/article-engine/internal/research"
)

func noSleep(q *Queue) {
	q.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
}

func TestProcess_AllTopicsSucceed(t *testing.T) {
	run := func(_ context.Context, topic string) (*pipeline.Result, error) {
		return &pipeline.Result{Topic: topic, Outcome: pipeline.OutcomePublished}, nil
	}
	q := New(run, Config{Workers: 3})

	reports := q.Process(context.Background(), []string{"a", "b", "c"})
	require.Len(t, reports, 3)
	for i, topic := range []string{"a", "b", "c"} {
		assert.Equal(t, topic, reports[i].Topic)
		assert.NoError(t, reports[i].Err)
		assert.Equal(t, 1, reports[i].Attempts)
	}
}

func TestProcess_RetryableFailureRecovers(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	run := func(_ context.Context, topic string) (*pipeline.Result, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return nil, &research.ProviderError{Provider: "web", Message: "rate limited", Retryable: true}
		}
		return &pipeline.Result{Topic: topic}, nil
	}
	q := New(run, Config{MaxAttempts: 3})
	noSleep(q)

	reports := q.Process(context.Background(), []string{"topic"})
	require.NoError(t, reports[0].Err)
	assert.Equal(t, 3, reports[0].Attempts)
}

func TestProcess_RetriesAreBounded(t *testing.T) {
	var attempts int32
	run := func(_ context.Context, _ string) (*pipeline.Result, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, &research.ProviderError{Provider: "web", Message: "timeout", Retryable: true}
	}
	q := New(run, Config{MaxAttempts: 3})
	noSleep(q)

	reports := q.Process(context.Background(), []string{"topic"})
	require.Error(t, reports[0].Err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, 3, reports[0].Attempts)
}

func TestProcess_TerminalFailuresNotRetried(t *testing.T) {
	terminalErrs := []error{
		&cost.CapExceededError{Stage: "research", Total: 5.50, Cap: 5.00},
		&research.TiersExhaustedError{Topic: "t", Attempted: []string{"premium"}},
		&pipeline.StageError{Stage: "research", Err: &research.ProviderError{Provider: "synthesis", Message: "bad payload"}},
	}

	for _, terminal := range terminalErrs {
		var attempts int32
		run := func(_ context.Context, _ string) (*pipeline.Result, error) {
			atomic.AddInt32(&attempts, 1)
			return nil, terminal
		}
		q := New(run, Config{MaxAttempts: 3})
		noSleep(q)

		reports := q.Process(context.Background(), []string{"topic"})
		require.Error(t, reports[0].Err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "error %v should not be retried", terminal)
	}
}

func TestRetryable(t *testing.T) {
	assert.False(t, Retryable(&cost.CapExceededError{}))
	assert.False(t, Retryable(&research.TiersExhaustedError{}))
	assert.False(t, Retryable(assert.AnError))
	assert.True(t, Retryable(&research.ProviderError{Retryable: true}))
	// Stage wrapping preserves the underlying classification.
	assert.True(t, Retryable(&pipeline.StageError{
		Stage: "research",
		Err:   &research.ProviderError{Retryable: true},
	}))
	assert.False(t, Retryable(&pipeline.StageError{
		Stage: "research",
		Err:   &cost.CapExceededError{},
	}))
}

func TestProcess_WorkerLimitRespected(t *testing.T) {
	var running, peak int32
	run := func(_ context.Context, topic string) (*pipeline.Result, error) {
		cur := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return &pipeline.Result{Topic: topic}, nil
	}
	q := New(run, Config{Workers: 2})

	q.Process(context.Background(), []string{"a", "b", "c", "d", "e"})
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestProcess_ContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	run := func(_ context.Context, _ string) (*pipeline.Result, error) {
		cancel()
		return nil, &research.ProviderError{Provider: "web", Message: "timeout", Retryable: true}
	}
	q := New(run, Config{MaxAttempts: 3, BaseDelay: time.Millisecond})

	reports := q.Process(ctx, []string{"topic"})
	require.Error(t, reports[0].Err)
	assert.ErrorIs(t, reports[0].Err, context.Canceled)
}
