package research

import (
	"errors"
	"fmt"
	"strings"
)

// ProviderError represents a failure inside one research provider. Retryable
// distinguishes transient faults (network, rate limit, timeout) from terminal
// ones (auth, malformed output); the queue only retries the former.
type ProviderError struct {
	Provider  string
	Message   string
	Retryable bool
	Cause     error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// TiersExhaustedError signals that every provider in the fallback chain failed
// for a topic. It is a hard failure for the job; no article can be produced.
type TiersExhaustedError struct {
	Topic     string
	Attempted []string
}

func (e *TiersExhaustedError) Error() string {
	return fmt.Sprintf("all research tiers exhausted for %q (attempted: %s)",
		e.Topic, strings.Join(e.Attempted, ", "))
}

// IsRetryable reports whether err is a provider error marked retryable.
// Exhausted tiers and non-provider errors are never retryable.
func IsRetryable(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return false
}
