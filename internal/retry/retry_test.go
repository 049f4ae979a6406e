package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ludex/internal/retry"
)

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), retry.Policy{Attempts: 3}, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDoReturnsLastErrorOnExhaustion(t *testing.T) {
	sentinel := errors.New("still broken")
	calls := 0
	err := retry.Do(context.Background(), retry.Policy{Attempts: 2}, func() error {
		calls++
		return sentinel
	})
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel in %v", err)
	}
}

func TestDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retry.Do(ctx, retry.Policy{Attempts: 3, Backoff: time.Minute}, func() error {
		return errors.New("never reached a second time")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	if err := retry.Do(context.Background(), retry.Policy{}, func() error {
		calls++
		return nil
	}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}
