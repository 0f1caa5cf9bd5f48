package services

import (
	"context"
	"strconv"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
	gormModels "skywatch/crewdeck/internal/models/gorm"
)

const defaultUpcomingLimit = 3

type MissionService struct {
	cache *cache.Client
	store MissionStore
	clock Clock
}

func NewMissionService(c *cache.Client, store MissionStore, clock Clock) *MissionService {
	if clock == nil {
		clock = RealClock{}
	}
	return &MissionService{cache: c, store: store, clock: clock}
}

func (s *MissionService) List(ctx context.Context, filters dtos.MissionFilters) ([]gormModels.Mission, error) {
	key := cache.NewKey(constants.KeyMissions).WithFilters(filters.Values())
	return cache.Fetch(ctx, s.cache, key, staleMissions, func(ctx context.Context) ([]gormModels.Mission, error) {
		return s.store.List(ctx, filters)
	})
}

func (s *MissionService) Get(ctx context.Context, id string) (gormModels.Mission, error) {
	if id == "" {
		return gormModels.Mission{}, apperrors.Validation("mission id required")
	}
	key := cache.NewKey(constants.KeyMission, id)
	return cache.Fetch(ctx, s.cache, key, staleMissions, func(ctx context.Context) (gormModels.Mission, error) {
		m, err := s.store.GetByID(ctx, id)
		if err != nil {
			return gormModels.Mission{}, err
		}
		return *m, nil
	})
}

// Upcoming lists planned or running missions from today, soonest first
func (s *MissionService) Upcoming(ctx context.Context, limit int) ([]gormModels.Mission, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	key := cache.NewKey(constants.KeyUpcomingMissions, strconv.Itoa(limit))
	return cache.Fetch(ctx, s.cache, key, staleMissions, func(ctx context.Context) ([]gormModels.Mission, error) {
		return s.store.Upcoming(ctx, s.clock.Now().Format(constants.DateLayout), limit)
	})
}

func (s *MissionService) Create(ctx context.Context, in dtos.MissionInput) (*gormModels.Mission, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	invalidate(s.cache,
		cache.NewKey(constants.KeyMissions),
		cache.NewKey(constants.KeyUpcomingMissions),
		cache.NewKey(constants.KeyTeamStats),
	)
	return m, nil
}

func (s *MissionService) Update(ctx context.Context, id string, patch dtos.MissionPatch) (*gormModels.Mission, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	m, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	invalidate(s.cache,
		cache.NewKey(constants.KeyMissions),
		cache.NewKey(constants.KeyMission, id),
		cache.NewKey(constants.KeyUpcomingMissions),
		cache.NewKey(constants.KeyTeamStats),
	)
	return m, nil
}

func (s *MissionService) Remove(ctx context.Context, id string) (string, error) {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return "", err
	}
	invalidate(s.cache,
		cache.NewKey(constants.KeyMissions),
		cache.NewKey(constants.KeyMission, id),
		cache.NewKey(constants.KeyUpcomingMissions),
		cache.NewKey(constants.KeyFlights, id),
		cache.NewKey(constants.KeyTeamStats),
	)
	return removed, nil
}
