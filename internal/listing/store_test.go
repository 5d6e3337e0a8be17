package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dealerbridge/lotposter/internal/form"
	"github.com/dealerbridge/lotposter/internal/vehicle"
)

func TestInMemoryCreateAndGet(t *testing.T) {
	svc := NewInMemoryService()

	created, err := svc.Create(context.Background(), vehicle.Record{"make": "Chevrolet"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != StatusPending {
		t.Fatalf("status = %s, want pending", created.Status)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("incomplete run %+v", created)
	}

	found, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found.Vehicle.Make() != "Chevrolet" {
		t.Fatalf("vehicle = %+v", found.Vehicle)
	}
}

func TestInMemoryCreateRejectsEmptyPayload(t *testing.T) {
	svc := NewInMemoryService()
	if _, err := svc.Create(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestInMemoryMarkCompleted(t *testing.T) {
	svc := NewInMemoryService()
	created, _ := svc.Create(context.Background(), vehicle.Record{"make": "Chevrolet"})

	report := form.Report{}
	updated, err := svc.MarkCompleted(context.Background(), created.ID, []string{"images/00.jpg"}, report)
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", updated.Status)
	}
	if updated.CompletedAt == nil {
		t.Fatalf("expected completion time")
	}
	if len(updated.Images) != 1 {
		t.Fatalf("images = %v", updated.Images)
	}
}

func TestInMemoryMarkFailedKeepsError(t *testing.T) {
	svc := NewInMemoryService()
	created, _ := svc.Create(context.Background(), vehicle.Record{"make": "Chevrolet"})

	updated, err := svc.MarkFailed(context.Background(), created.ID, nil, form.Report{}, "chrome exited")
	if err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if updated.Status != StatusFailed || updated.Error != "chrome exited" {
		t.Fatalf("unexpected run %+v", updated)
	}
}

func TestInMemoryUnknownRun(t *testing.T) {
	svc := NewInMemoryService()
	if _, err := svc.Get(context.Background(), "run_missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err = %v, want ErrRunNotFound", err)
	}
	if _, err := svc.MarkSkipped(context.Background(), "run_missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err = %v, want ErrRunNotFound", err)
	}
}

func TestInMemoryListRecentNewestFirst(t *testing.T) {
	svc := NewInMemoryService()
	if _, err := svc.Create(context.Background(), vehicle.Record{"make": "Chevrolet"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	second, _ := svc.Create(context.Background(), vehicle.Record{"make": "Ford"})

	items, err := svc.ListRecent(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1", len(items))
	}
	if items[0].ID != second.ID {
		t.Fatalf("newest run = %+v, want %s", items[0], second.ID)
	}
}
