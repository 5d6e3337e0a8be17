package listing

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dealerbridge/lotposter/internal/form"
	"github.com/dealerbridge/lotposter/internal/vehicle"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSkipped   Status = "skipped"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var ErrRunNotFound = errors.New("run not found")

// Run is one captured vehicle and the outcome of posting it.
type Run struct {
	ID          string         `json:"id"`
	Status      Status         `json:"status"`
	Vehicle     vehicle.Record `json:"vehicle"`
	Images      []string       `json:"images,omitempty"`
	Report      form.Report    `json:"report"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

type Service interface {
	Create(ctx context.Context, rec vehicle.Record) (Run, error)
	MarkSkipped(ctx context.Context, id string) (Run, error)
	MarkCompleted(ctx context.Context, id string, images []string, report form.Report) (Run, error)
	MarkFailed(ctx context.Context, id string, images []string, report form.Report, runErr string) (Run, error)
	Get(ctx context.Context, id string) (Run, error)
	ListRecent(ctx context.Context, limit int) ([]Run, error)
}

type InMemoryService struct {
	mu    sync.RWMutex
	items map[string]Run
}

func NewInMemoryService() *InMemoryService {
	return &InMemoryService{items: make(map[string]Run)}
}

func (s *InMemoryService) Create(_ context.Context, rec vehicle.Record) (Run, error) {
	if len(rec) == 0 {
		return Run{}, errors.New("vehicle payload is required")
	}
	created := Run{
		ID:        "run_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Status:    StatusPending,
		Vehicle:   rec,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.items[created.ID] = created
	s.mu.Unlock()

	return created, nil
}

func (s *InMemoryService) MarkSkipped(_ context.Context, id string) (Run, error) {
	return s.update(id, func(r *Run) {
		r.Status = StatusSkipped
		r.CompletedAt = nowPtr()
	})
}

func (s *InMemoryService) MarkCompleted(_ context.Context, id string, images []string, report form.Report) (Run, error) {
	return s.update(id, func(r *Run) {
		r.Status = StatusCompleted
		r.Images = images
		r.Report = report
		r.CompletedAt = nowPtr()
	})
}

func (s *InMemoryService) MarkFailed(_ context.Context, id string, images []string, report form.Report, runErr string) (Run, error) {
	return s.update(id, func(r *Run) {
		r.Status = StatusFailed
		r.Images = images
		r.Report = report
		r.Error = runErr
		r.CompletedAt = nowPtr()
	})
}

func (s *InMemoryService) Get(_ context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found, ok := s.items[id]
	if !ok {
		return Run{}, ErrRunNotFound
	}
	return found, nil
}

func (s *InMemoryService) ListRecent(_ context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	items := make([]Run, 0, len(s.items))
	for _, r := range s.items {
		items = append(items, r)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *InMemoryService) update(id string, apply func(*Run)) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found, ok := s.items[id]
	if !ok {
		return Run{}, ErrRunNotFound
	}
	apply(&found)
	s.items[id] = found
	return found, nil
}

func nowPtr() *time.Time {
	now := time.Now().UTC()
	return &now
}
