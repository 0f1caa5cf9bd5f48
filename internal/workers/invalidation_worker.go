package workers

import (
	"context"

	"go.uber.org/zap"

	"skywatch/crewdeck/internal/bus"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/logging"
	"skywatch/crewdeck/internal/metrics"
)

// InvalidationWorker is the single consumer of the invalidation bus. Both
// the change feed and the poll scheduler publish to it.
type InvalidationWorker struct {
	cache   *cache.Client
	bus     *bus.Bus
	metrics *metrics.MetricsRegistry
	log     *zap.SugaredLogger
}

func NewInvalidationWorker(c *cache.Client, b *bus.Bus, m *metrics.MetricsRegistry) *InvalidationWorker {
	return &InvalidationWorker{cache: c, bus: b, metrics: m, log: logging.Named("invalidation_worker")}
}

// Start consumes events until ctx ends or the bus closes
func (w *InvalidationWorker) Start(ctx context.Context) {
	w.log.Infow("Invalidation worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Infow("Invalidation worker shutting down")
			return
		case <-w.bus.Done():
			w.log.Infow("Invalidation bus closed, worker exiting")
			return
		case ev := <-w.bus.Events():
			w.handle(ev)
		}
	}
}

func (w *InvalidationWorker) handle(ev bus.Event) {
	n := w.cache.Invalidate(ev.Key)
	w.metrics.BusEvent(ev.Source, w.bus.Len())
	w.log.Debugw("Applied invalidation", "key", ev.Key.String(), "source", ev.Source, "entries", n)
}
