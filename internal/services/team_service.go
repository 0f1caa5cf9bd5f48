package services

import (
	"context"
	"time"

	"skywatch/crewdeck/internal/aggregation"
	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
)

// TeamService serves the dashboard aggregates
type TeamService struct {
	cache    *cache.Client
	stats    StatsStore
	profiles ProfileStore
	avail    AvailabilityStore
	clock    Clock
}

func NewTeamService(c *cache.Client, stats StatsStore, profiles ProfileStore, avail AvailabilityStore, clock Clock) *TeamService {
	if clock == nil {
		clock = RealClock{}
	}
	return &TeamService{cache: c, stats: stats, profiles: profiles, avail: avail, clock: clock}
}

// Stats returns the dashboard counters for today
func (s *TeamService) Stats(ctx context.Context) (dtos.TeamStats, error) {
	return cache.Fetch(ctx, s.cache, cache.NewKey(constants.KeyTeamStats), staleTeamStats, func(ctx context.Context) (dtos.TeamStats, error) {
		st, err := s.stats.TeamStats(ctx, s.clock.Now())
		if err != nil {
			return dtos.TeamStats{}, err
		}
		return *st, nil
	})
}

// Availability returns per-day availability for month (YYYY-MM), the
// current month when empty.
func (s *TeamService) Availability(ctx context.Context, month string) (aggregation.TeamAvailability, error) {
	var start time.Time
	if month == "" {
		now := s.clock.Now()
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		t, err := aggregation.ParseMonth(month)
		if err != nil {
			return aggregation.TeamAvailability{}, apperrors.Validation("month must be YYYY-MM, got %q", month)
		}
		start = t
	}

	key := cache.NewKey(constants.KeyTeamAvailability, start.Format(constants.MonthLayout))
	return cache.Fetch(ctx, s.cache, key, staleTeamAvailability, func(ctx context.Context) (aggregation.TeamAvailability, error) {
		first, last := aggregation.MonthBounds(start)
		rows, err := s.avail.ListAvailableInRange(ctx, first, last)
		if err != nil {
			return aggregation.TeamAvailability{}, err
		}
		total, err := s.profiles.Count(ctx)
		if err != nil {
			return aggregation.TeamAvailability{}, err
		}
		return aggregation.BuildTeamAvailability(start, rows, total), nil
	})
}
