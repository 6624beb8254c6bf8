// Package retry implements the shared retry policy used by the fetcher
// and the notifier.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how an operation is retried: the attempt budget, the
// delay before each re-attempt, and which errors are worth retrying at all.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	IsRetryable func(err error) bool
}

// LinearBackoff returns base, 2*base, 3*base, ... per attempt.
func LinearBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt+1)
	}
}

// Do runs fn until it succeeds, the attempt budget is exhausted, a
// non-retryable error is returned, or ctx is cancelled. The last error
// is wrapped in the exhaustion case.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(0)
			if p.Backoff != nil {
				delay = p.Backoff(attempt - 1)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if p.IsRetryable != nil && !p.IsRetryable(lastErr) {
			return lastErr
		}
	}
	return fmt.Errorf("exhausted %d attempts: %w", maxAttempts, lastErr)
}
