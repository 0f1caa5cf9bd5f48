package realtime

import (
	"context"
	"sync"
)

// Binding keeps one subscription pointed at the current value of an id,
// for example the signed-in user or the mission on screen.
type Binding struct {
	m     *Manager
	build func(id string) Spec

	mu  sync.Mutex
	id  string
	sub *Subscription
}

// Bind returns an unbound Binding. Call Set once the id is known.
func (m *Manager) Bind(build func(id string) Spec) *Binding {
	return &Binding{m: m, build: build}
}

// Set re-targets the binding. The same id is a no-op, an empty id closes the
// current subscription, and a new id closes the old one before opening.
func (b *Binding) Set(ctx context.Context, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id == b.id {
		return
	}
	b.sub.Close()
	b.sub = nil
	b.id = id
	if id == "" {
		return
	}
	b.sub = b.m.Subscribe(ctx, b.build(id))
}

// Current returns the bound id and its channel name, empty when unbound
func (b *Binding) Current() (id, channel string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub == nil {
		return b.id, ""
	}
	return b.id, b.sub.Channel()
}

func (b *Binding) Close() {
	if b == nil {
		return
	}
	b.Set(context.Background(), "")
}
