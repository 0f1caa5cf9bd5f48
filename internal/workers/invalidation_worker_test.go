package workers

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"skywatch/crewdeck/internal/bus"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/metrics"
)

func TestInvalidationWorker_AppliesBusEvents(t *testing.T) {
	c := cache.NewClient(cache.Options{})
	b := bus.New(8)
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())

	c.SetQueryData(cache.NewKey("flights", "m1"), []string{"f1"})
	c.SetQueryData(cache.NewKey("flights", "m2"), []string{"f2"})
	c.SetQueryData(cache.NewKey("missions"), []string{"m1"})

	events := make(chan cache.Event, 4)
	stop := c.Observe(cache.NewKey("flights"), func(ev cache.Event) { events <- ev })
	defer stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	w := NewInvalidationWorker(c, b, m)
	go func() {
		w.Start(ctx)
		close(done)
	}()

	if err := b.Publish(ctx, bus.Event{Key: cache.NewKey("flights"), Source: bus.SourceRealtime}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case ev := <-events:
			if ev.Kind != cache.EventInvalidated {
				t.Errorf("Expected invalidation, got %+v", ev)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for invalidation")
		}
	}

	if st, _ := c.State(cache.NewKey("missions")); st.Data == nil {
		t.Error("Expected missions untouched")
	}

	deadline := time.Now().Add(2 * time.Second)
	for testutil.ToFloat64(m.BusEventsTotal.WithLabelValues(bus.SourceRealtime)) != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := testutil.ToFloat64(m.BusEventsTotal.WithLabelValues(bus.SourceRealtime)); got != 1 {
		t.Errorf("Expected one realtime bus event counted, got %v", got)
	}

	b.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected worker to exit when the bus closes")
	}
}
