package jobs

import (
	"context"
	"time"

	"skywatch/crewdeck/internal/bus"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/logging"
	"skywatch/crewdeck/internal/metrics"
)

// PollJob periodically invalidates the dashboard aggregates. Team stats and
// team availability span several tables, so they are refreshed on a timer as
// well as by the change feed.
type PollJob struct {
	name    string
	pub     bus.Publisher
	keys    []cache.Key
	metrics *metrics.MetricsRegistry
}

func NewPollJob(pub bus.Publisher, m *metrics.MetricsRegistry) *PollJob {
	return &PollJob{
		name: "dashboard_poll",
		pub:  pub,
		keys: []cache.Key{
			cache.NewKey(constants.KeyTeamStats),
			cache.NewKey(constants.KeyTeamAvailability),
		},
		metrics: m,
	}
}

// Run publishes one poll event per key
func (j *PollJob) Run(ctx context.Context) error {
	start := time.Now()
	defer func() {
		j.metrics.PollRun(j.name, time.Since(start).Seconds())
	}()

	for _, k := range j.keys {
		if err := j.pub.Publish(ctx, bus.Event{Key: k, Source: bus.SourcePoll}); err != nil {
			return err
		}
	}
	logging.Debug("Poll job published invalidations", "job", j.name, "keys", len(j.keys))
	return nil
}

// RunScheduled runs the job every interval until ctx ends. The first run is
// one interval after start: nothing is cached yet at boot.
func (j *PollJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				logging.Warn("Poll job run failed", "job", j.name, "error", err.Error())
			}
		case <-ctx.Done():
			logging.Info("Poll job shutting down", "job", j.name)
			return
		}
	}
}
