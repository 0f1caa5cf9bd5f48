package realtime

import (
	"context"
	"sync"

	"skywatch/crewdeck/internal/constants"
)

// MemoryFeed delivers changes synchronously inside the process. It serves
// single-instance deployments and tests.
type MemoryFeed struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[constants.Table]map[int]Handler
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{handlers: make(map[constants.Table]map[int]Handler)}
}

func (f *MemoryFeed) Publish(ctx context.Context, c Change) error {
	f.mu.RLock()
	hs := make([]Handler, 0, len(f.handlers[c.Table]))
	for _, h := range f.handlers[c.Table] {
		hs = append(hs, h)
	}
	f.mu.RUnlock()

	for _, h := range hs {
		h(c)
	}
	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context, table constants.Table, h Handler) (func() error, error) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	if f.handlers[table] == nil {
		f.handlers[table] = make(map[int]Handler)
	}
	f.handlers[table][id] = h
	f.mu.Unlock()

	var once sync.Once
	return func() error {
		once.Do(func() {
			f.mu.Lock()
			delete(f.handlers[table], id)
			f.mu.Unlock()
		})
		return nil
	}, nil
}

// Subscribers counts live handlers on table
func (f *MemoryFeed) Subscribers(table constants.Table) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.handlers[table])
}

func (f *MemoryFeed) Ping(ctx context.Context) error { return nil }

func (f *MemoryFeed) Close() error { return nil }
