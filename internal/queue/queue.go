// Package queue runs article generation jobs through a bounded worker pool
// with retry handling. Jobs are independent; they share no state beyond the
// caches, so coordination happens through the queue rather than shared memory.
package queue

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/article-engine/internal/cost"
	"github.com/jonathan/article-engine/internal/pipeline"
	"github.com/jonathan/article-engine/internal/research"
)

// Defaults for the worker pool and retry policy.
const (
	DefaultWorkers     = 2
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 5 * time.Second
)

// RunFunc executes one job attempt for a topic.
type RunFunc func(ctx context.Context, topic string) (*pipeline.Result, error)

// Report is the final record of one job, after retries.
type Report struct {
	Topic    string
	Result   *pipeline.Result
	Err      error
	Attempts int
}

// Config tunes the worker pool and retry policy.
type Config struct {
	Workers     int
	MaxAttempts int
	BaseDelay   time.Duration
}

// Queue coordinates concurrent article jobs.
type Queue struct {
	run         RunFunc
	workers     int
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// New creates a Queue with the given run function.
func New(run RunFunc, cfg Config) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	return &Queue{
		run:         run,
		workers:     cfg.Workers,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
		sleep:       sleepCtx,
	}
}

// Process runs every topic through the pool and returns one report per topic,
// in input order. Retryable failures (network, rate limit, timeout) are
// retried with exponential backoff; terminal failures (cost cap, exhausted
// tiers, hard validation) are reported after the first attempt.
func (q *Queue) Process(ctx context.Context, topics []string) []Report {
	reports := make([]Report, len(topics))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(q.workers)

	for i, topic := range topics {
		g.Go(func() error {
			reports[i] = q.processOne(gctx, topic)
			return nil
		})
	}
	// Workers only return nil; Wait is for joining.
	_ = g.Wait()

	return reports
}

func (q *Queue) processOne(ctx context.Context, topic string) Report {
	report := Report{Topic: topic}

	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		report.Attempts = attempt

		result, err := q.run(ctx, topic)
		report.Result = result
		report.Err = err
		if err == nil {
			return report
		}

		if !Retryable(err) {
			log.Printf("[QUEUE] job %q failed terminally: %v", topic, err)
			return report
		}
		if attempt == q.maxAttempts {
			log.Printf("[QUEUE] job %q failed after %d attempts: %v", topic, attempt, err)
			return report
		}

		delay := q.baseDelay << (attempt - 1)
		log.Printf("[QUEUE] job %q attempt %d failed, retrying in %s: %v", topic, attempt, delay, err)
		if err := q.sleep(ctx, delay); err != nil {
			report.Err = err
			return report
		}
	}
	return report
}

// Retryable reports whether a job failure is worth another attempt. Cost cap
// breaches and exhausted research tiers are terminal; provider errors carry
// their own retryable flag.
func Retryable(err error) bool {
	var capErr *cost.CapExceededError
	if errors.As(err, &capErr) {
		return false
	}
	var exhausted *research.TiersExhaustedError
	if errors.As(err, &exhausted) {
		return false
	}
	return research.IsRetryable(err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
