package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")
var errPermanent = errors.New("permanent")

func testPolicy(maxAttempts int) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Backoff:     func(int) time.Duration { return 0 },
		IsRetryable: func(err error) bool { return errors.Is(err, errTransient) },
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := testPolicy(3).Do(context.Background(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_RetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	err := testPolicy(3).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_ExhaustsBudget(t *testing.T) {
	calls := 0
	err := testPolicy(3).Do(context.Background(), func() error {
		calls++
		return errTransient
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !errors.Is(err, errTransient) {
		t.Errorf("exhaustion error should wrap the last failure, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_NonRetryableReturnsImmediately(t *testing.T) {
	calls := 0
	err := testPolicy(5).Do(context.Background(), func() error {
		calls++
		return errPermanent
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_ContextCancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := Policy{
		MaxAttempts: 3,
		Backoff:     func(int) time.Duration { return time.Hour },
		IsRetryable: func(error) bool { return true },
	}

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func() error {
			calls++
			return errTransient
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Do did not return after cancellation")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (second attempt gated by backoff)", calls)
	}
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	err := Policy{}.Do(context.Background(), func() error {
		calls++
		return errPermanent
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestLinearBackoff(t *testing.T) {
	backoff := LinearBackoff(time.Second)
	for i, want := range []time.Duration{time.Second, 2 * time.Second, 3 * time.Second} {
		if got := backoff(i); got != want {
			t.Errorf("backoff(%d) = %v, want %v", i, got, want)
		}
	}
}
