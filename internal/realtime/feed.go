package realtime

import (
	"context"

	"skywatch/crewdeck/internal/constants"
)

// Handler receives every change on a subscribed table
type Handler func(Change)

// Feed is the change-feed transport. Repositories publish after commit and
// the Manager subscribes once per table.
type Feed interface {
	Publish(ctx context.Context, c Change) error
	// Subscribe returns once the subscription is live. The returned func
	// stops delivery and is safe to call more than once.
	Subscribe(ctx context.Context, table constants.Table, h Handler) (func() error, error)
	Ping(ctx context.Context) error
	Close() error
}
