// Package cost tracks per-job external API spend against a hard cap.
package cost

import (
	"fmt"
	"sync"
)

// Stage names used by the pipeline when reporting costs
const (
	StageResearch = "research"
	StageContent  = "content"
	StageEditing  = "editing"
	StageImagery  = "imagery"
)

// CapExceededError signals that a job's running cost total surpassed the
// configured per-job ceiling. It is terminal for the job and is never retried.
type CapExceededError struct {
	Stage string
	Total float64
	Cap   float64
}

func (e *CapExceededError) Error() string {
	return fmt.Sprintf("cost cap exceeded at stage %s: total $%.4f exceeds cap $%.4f", e.Stage, e.Total, e.Cap)
}

// Ledger accumulates stage costs for a single job. Additions are monotonic and
// the cap is checked on every add so expensive trailing stages are never
// started once the budget is gone. A Ledger is strictly per-job state; it is
// safe for use from the job's own goroutines but never shared across jobs.
type Ledger struct {
	mu     sync.Mutex
	cap    float64
	total  float64
	stages map[string]float64
}

// NewLedger creates a Ledger with the given per-job cap. A zero or negative
// cap disables enforcement.
func NewLedger(capAmount float64) *Ledger {
	return &Ledger{
		cap:    capAmount,
		stages: make(map[string]float64),
	}
}

// Add records a stage's cost contribution and checks the cap.
// Returns a *CapExceededError when the running total surpasses the cap.
func (l *Ledger) Add(stage string, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("cost for stage %s must be non-negative, got %.4f", stage, amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.total += amount
	l.stages[stage] += amount

	if l.cap > 0 && l.total > l.cap {
		return &CapExceededError{Stage: stage, Total: l.total, Cap: l.cap}
	}
	return nil
}

// Total returns the running cost total
func (l *Ledger) Total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Stage returns the accumulated cost for one stage
func (l *Ledger) Stage(stage string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stages[stage]
}

// Breakdown returns a copy of the per-stage totals
func (l *Ledger) Breakdown() map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]float64, len(l.stages))
	for k, v := range l.stages {
		out[k] = v
	}
	return out
}

// Remaining returns the budget left before the cap, or -1 when uncapped
func (l *Ledger) Remaining() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cap <= 0 {
		return -1
	}
	rem := l.cap - l.total
	if rem < 0 {
		return 0
	}
	return rem
}
