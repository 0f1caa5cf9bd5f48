package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"skywatch/crewdeck/internal/aggregation"
	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
)

// StatsRepository runs the dashboard counters as raw SQL
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// TeamStats computes the dashboard counters for the month containing today.
// The five counters run concurrently.
func (r *StatsRepository) TeamStats(ctx context.Context, today time.Time) (*dtos.TeamStats, error) {
	day := today.Format(constants.DateLayout)
	monthStart, monthEnd := aggregation.MonthBounds(today)

	var (
		members, availableToday, missionsThisMonth, active int
		flightMinutes                                      int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.count(gctx, &members, `SELECT COUNT(*) FROM profiles`)
	})
	g.Go(func() error {
		return r.count(gctx, &availableToday,
			`SELECT COUNT(DISTINCT user_id) FROM availabilities WHERE status = ? AND start_date <= ? AND end_date >= ?`,
			string(constants.AvailabilityAvailable), day, day)
	})
	g.Go(func() error {
		return r.count(gctx, &missionsThisMonth,
			`SELECT COUNT(*) FROM missions WHERE mission_date >= ? AND mission_date <= ?`,
			monthStart, monthEnd)
	})
	g.Go(func() error {
		return r.count(gctx, &active,
			`SELECT COUNT(*) FROM missions WHERE status = ?`, string(constants.MissionInProgress))
	})
	g.Go(func() error {
		q := r.db.Rebind(`SELECT COALESCE(SUM(duration_minutes), 0) FROM flights WHERE flight_date >= ? AND flight_date <= ?`)
		if err := r.db.GetContext(gctx, &flightMinutes, q, monthStart, monthEnd); err != nil {
			return fmt.Errorf("failed to sum flight minutes: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, apperrors.Backend(err)
	}

	return &dtos.TeamStats{
		TotalMembers:      members,
		AvailableToday:    availableToday,
		MissionsThisMonth: missionsThisMonth,
		ActiveMissions:    active,
		TotalFlightHours:  aggregation.FlightHours(int(flightMinutes)),
	}, nil
}

func (r *StatsRepository) count(ctx context.Context, dest *int, query string, args ...interface{}) error {
	if err := r.db.GetContext(ctx, dest, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to run counter %q: %w", query, err)
	}
	return nil
}

// Ping checks the pool
func (r *StatsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
