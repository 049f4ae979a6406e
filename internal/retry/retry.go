// Package retry provides a bounded retry helper for fallible operations.
//
// Call sites declare the attempt budget and backoff once instead of
// hand-rolling loops; the final error is returned after exhaustion so callers
// can downgrade it to a per-file status.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds a retried operation.
type Policy struct {
	Attempts int
	Backoff  time.Duration
}

// Do runs op until it succeeds, the attempt budget is exhausted, or ctx is
// cancelled. The last error is returned on exhaustion; context errors win
// over operation errors when cancellation interrupts the wait.
func Do(ctx context.Context, policy Policy, op func() error) error {
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if policy.Backoff > 0 {
			timer := time.NewTimer(policy.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
