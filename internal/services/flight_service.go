package services

import (
	"context"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
	gormModels "skywatch/crewdeck/internal/models/gorm"
	"skywatch/crewdeck/internal/realtime"
)

type FlightService struct {
	cache    *cache.Client
	store    FlightStore
	realtime *realtime.Manager
}

func NewFlightService(c *cache.Client, store FlightStore, rt *realtime.Manager) *FlightService {
	return &FlightService{cache: c, store: store, realtime: rt}
}

// List returns a mission's flights newest first
func (s *FlightService) List(ctx context.Context, missionID string) ([]gormModels.Flight, error) {
	if missionID == "" {
		return nil, apperrors.Validation("mission id required")
	}
	key := cache.NewKey(constants.KeyFlights, missionID)
	return cache.Fetch(ctx, s.cache, key, staleFlights, func(ctx context.Context) ([]gormModels.Flight, error) {
		return s.store.ListByMission(ctx, missionID)
	})
}

func (s *FlightService) Create(ctx context.Context, in dtos.FlightInput) (*gormModels.Flight, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	f, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return f, nil
}

func (s *FlightService) Update(ctx context.Context, id string, patch dtos.FlightPatch) (*gormModels.Flight, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	f, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return f, nil
}

func (s *FlightService) Remove(ctx context.Context, id string) (string, error) {
	f, err := s.store.Delete(ctx, id)
	if err != nil {
		return "", err
	}
	s.invalidate()
	return f.ID, nil
}

// Watch keeps the flight list of the mission on screen in sync with the
// change feed. Set on the returned binding follows the caller to another
// mission; nil without a realtime manager.
func (s *FlightService) Watch(ctx context.Context, missionID string) *realtime.Binding {
	if s.realtime == nil {
		return nil
	}
	b := s.realtime.Bind(realtime.FlightsForMission)
	b.Set(ctx, missionID)
	return b
}

func (s *FlightService) invalidate() {
	invalidate(s.cache, cache.NewKey(constants.KeyFlights), cache.NewKey(constants.KeyTeamStats))
}
