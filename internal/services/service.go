package services

import (
	"time"

	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/logging"
)

// Stale times per query family
const (
	staleFlights          = 1 * time.Minute
	staleTeamAvailability = 1 * time.Minute
	staleMissions         = 2 * time.Minute
	staleAvailabilities   = 2 * time.Minute
	staleCertifications   = 2 * time.Minute
	staleTeamStats        = 2 * time.Minute
	staleProfile          = 5 * time.Minute
	staleTrainings        = 5 * time.Minute
	staleGuidelines       = 5 * time.Minute
)

// Clock is injected so tests can pin "today"
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// invalidate marks every key under each prefix stale
func invalidate(c *cache.Client, prefixes ...cache.Key) {
	total := 0
	for _, p := range prefixes {
		total += c.Invalidate(p)
	}
	logging.Debug("Invalidated cache prefixes", "prefixes", prefixes, "entries", total)
}
