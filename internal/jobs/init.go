package jobs

import (
	"context"
	"time"

	"skywatch/crewdeck/internal/bus"
	"skywatch/crewdeck/internal/metrics"
)

// InitializeJobs initializes and starts all background jobs
func InitializeJobs(
	ctx context.Context,
	pub bus.Publisher,
	m *metrics.MetricsRegistry,
	pollInterval time.Duration,
) *PollJob {
	// Dashboard aggregates are refreshed every pollInterval (5 minutes by default)
	pollJob := NewPollJob(pub, m)
	go pollJob.RunScheduled(ctx, pollInterval)

	return pollJob
}
