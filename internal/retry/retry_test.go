package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return errors.New("temporary")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetry_PermanentStopsImmediately(t *testing.T) {
	base := errors.New("not found")
	calls := 0
	err := WithRetry(context.Background(), RetryConfig{MaxAttempts: 5, Delay: time.Millisecond}, func() error {
		calls++
		return Permanent(base)
	})
	if !errors.Is(err, base) {
		t.Fatalf("err = %v, want %v", err, base)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	base := errors.New("boom")
	err := WithRetry(context.Background(), RetryConfig{MaxAttempts: 2, Delay: time.Millisecond, Backoff: true}, func() error {
		return base
	})
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithRetry(ctx, RetryConfig{MaxAttempts: 3, Delay: time.Second}, func() error {
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
