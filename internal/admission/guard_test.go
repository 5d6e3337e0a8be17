package admission

import (
	"context"
	"testing"
)

func TestInMemoryGuardRejectsSecondAcquire(t *testing.T) {
	guard := NewInMemoryGuard()
	ctx := context.Background()

	release, ok, err := guard.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire 1: %v", err)
	}
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}

	_, ok, err = guard.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire 2: %v", err)
	}
	if ok {
		t.Fatalf("expected second acquire to be rejected while slot held")
	}

	release()

	release2, ok, err := guard.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire 3: %v", err)
	}
	if !ok {
		t.Fatalf("expected acquire after release to succeed")
	}
	release2()
}

func TestInMemoryGuardReleaseIsIdempotent(t *testing.T) {
	guard := NewInMemoryGuard()
	ctx := context.Background()

	release, ok, _ := guard.Acquire(ctx)
	if !ok {
		t.Fatalf("expected acquire to succeed")
	}
	release()
	release()

	// A double release must not free a slot someone else now holds.
	releaseOther, ok, _ := guard.Acquire(ctx)
	if !ok {
		t.Fatalf("expected acquire to succeed")
	}
	release()

	_, ok, _ = guard.Acquire(ctx)
	if ok {
		t.Fatalf("stale release freed an active slot")
	}
	releaseOther()
}
