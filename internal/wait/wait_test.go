package wait

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestUntilSucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := Until(context.Background(), "thing", Config{Timeout: time.Second, Interval: time.Millisecond}, func(context.Context) (bool, error) {
		attempts++
		return attempts >= 3, nil
	})
	if err != nil {
		t.Fatalf("Until: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestUntilTimesOut(t *testing.T) {
	err := Until(context.Background(), "never ready", Config{Timeout: 20 * time.Millisecond, Interval: 5 * time.Millisecond}, func(context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestUntilPropagatesCheckError(t *testing.T) {
	boom := errors.New("boom")
	err := Until(context.Background(), "thing", Config{Timeout: time.Second, Interval: time.Millisecond}, func(context.Context) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected check error, got %v", err)
	}
}

func TestUntilHonorsParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Until(ctx, "thing", Config{Timeout: time.Second, Interval: time.Millisecond}, func(context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
