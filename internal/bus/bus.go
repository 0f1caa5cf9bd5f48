package bus

import (
	"context"
	"errors"
	"sync"

	"skywatch/crewdeck/internal/cache"
)

// Sources of invalidation events
const (
	SourceRealtime = "realtime"
	SourcePoll     = "poll"
)

var ErrClosed = errors.New("bus: closed")

// Event asks the consumer to invalidate every cache key under Key
type Event struct {
	Key    cache.Key
	Source string
}

// Publisher is implemented by Bus. Producers depend on this, not on Bus.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Bus is a buffered queue of invalidation events with many producers and a
// single consumer.
type Bus struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

func New(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	return &Bus{
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

// Publish blocks until the event is queued, ctx ends or the bus closes
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	select {
	case <-b.done:
		return ErrClosed
	default:
	}
	select {
	case b.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return ErrClosed
	}
}

// Events is the consumer side
func (b *Bus) Events() <-chan Event {
	return b.events
}

// Done is closed once Close is called
func (b *Bus) Done() <-chan struct{} {
	return b.done
}

// Len is the number of queued events
func (b *Bus) Len() int {
	return len(b.events)
}

func (b *Bus) Close() {
	b.once.Do(func() { close(b.done) })
}
