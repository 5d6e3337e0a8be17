// Package admission provides the single-slot guard in front of the listing
// flow. Only one capture runs at a time; a second request while one is in
// flight is rejected immediately rather than queued.
package admission

import (
	"context"
	"sync"
)

// Guard admits at most one holder. Acquire reports ok=false without
// blocking when the slot is taken; the returned release func is safe to
// call more than once and must be deferred on every exit path.
type Guard interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}

type InMemoryGuard struct {
	mu   sync.Mutex
	busy bool
}

func NewInMemoryGuard() *InMemoryGuard {
	return &InMemoryGuard{}
}

func (g *InMemoryGuard) Acquire(_ context.Context) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.busy {
		return nil, false, nil
	}
	g.busy = true

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			g.busy = false
			g.mu.Unlock()
		})
	}
	return release, true, nil
}
