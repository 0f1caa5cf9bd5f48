package workers

import (
	"context"

	"skywatch/crewdeck/internal/bus"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/metrics"
)

type WorkersContainer struct {
	Invalidation *InvalidationWorker
}

func InitWorkers(ctx context.Context, c *cache.Client, b *bus.Bus, m *metrics.MetricsRegistry) *WorkersContainer {
	invalidation := NewInvalidationWorker(c, b, m)

	// Start workers
	go invalidation.Start(ctx)

	return &WorkersContainer{
		Invalidation: invalidation,
	}
}
