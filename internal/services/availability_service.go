package services

import (
	"context"

	"skywatch/crewdeck/internal/aggregation"
	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
	gormModels "skywatch/crewdeck/internal/models/gorm"
	"skywatch/crewdeck/internal/realtime"
)

type AvailabilityService struct {
	cache    *cache.Client
	store    AvailabilityStore
	realtime *realtime.Manager
}

func NewAvailabilityService(c *cache.Client, store AvailabilityStore, rt *realtime.Manager) *AvailabilityService {
	return &AvailabilityService{cache: c, store: store, realtime: rt}
}

func (s *AvailabilityService) List(ctx context.Context, userID string) ([]gormModels.Availability, error) {
	if userID == "" {
		return nil, apperrors.Validation("user id required")
	}
	key := cache.NewKey(constants.KeyAvailabilities, userID)
	return cache.Fetch(ctx, s.cache, key, staleAvailabilities, func(ctx context.Context) ([]gormModels.Availability, error) {
		return s.store.ListByUser(ctx, userID)
	})
}

// HasOverlap checks [start, end] against the user's cached ranges
func (s *AvailabilityService) HasOverlap(ctx context.Context, userID, start, end, excludeID string) (bool, error) {
	existing, err := s.List(ctx, userID)
	if err != nil {
		return false, err
	}
	return aggregation.Overlaps(existing, start, end, excludeID), nil
}

func (s *AvailabilityService) Create(ctx context.Context, userID string, in dtos.AvailabilityInput) (*gormModels.Availability, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	overlap, err := s.HasOverlap(ctx, userID, in.StartDate, in.EndDate, "")
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, apperrors.New(constants.ErrCodeAvailabilityOverlap, nil)
	}

	row, err := s.store.Create(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return row, nil
}

// Update pre-checks the merged range against the caller's cached list when
// the row is in it. The store repeats the check either way.
func (s *AvailabilityService) Update(ctx context.Context, id string, patch dtos.AvailabilityPatch) (*gormModels.Availability, error) {
	if claims := auth.GetUserClaims(ctx); claims != nil {
		existing, err := s.List(ctx, claims.UserID())
		if err != nil {
			return nil, err
		}
		for _, cur := range existing {
			if cur.ID != id {
				continue
			}
			merged := mergeAvailability(cur, patch)
			if err := dtos.ValidateRange(merged.StartDate, merged.EndDate, merged.Status); err != nil {
				return nil, err
			}
			if aggregation.Overlaps(existing, merged.StartDate, merged.EndDate, id) {
				return nil, apperrors.New(constants.ErrCodeAvailabilityOverlap, nil)
			}
		}
	}

	row, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return row, nil
}

func (s *AvailabilityService) Remove(ctx context.Context, id string) (string, error) {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return "", err
	}
	s.invalidate()
	return removed, nil
}

// Watch keeps the user's availability keys in sync with the change feed
func (s *AvailabilityService) Watch(ctx context.Context, userID string) *realtime.Subscription {
	if s.realtime == nil || userID == "" {
		return nil
	}
	return s.realtime.Subscribe(ctx, realtime.AvailabilitiesForUser(userID))
}

func (s *AvailabilityService) invalidate() {
	invalidate(s.cache,
		cache.NewKey(constants.KeyAvailabilities),
		cache.NewKey(constants.KeyTeamAvailability),
		cache.NewKey(constants.KeyTeamStats),
	)
}

func mergeAvailability(cur gormModels.Availability, patch dtos.AvailabilityPatch) gormModels.Availability {
	if patch.StartDate != nil {
		cur.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		cur.EndDate = *patch.EndDate
	}
	if patch.Status != nil {
		cur.Status = *patch.Status
	}
	return cur
}
