package services

import (
	"context"
	"fmt"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
	gormModels "skywatch/crewdeck/internal/models/gorm"
	"skywatch/crewdeck/internal/storage"
)

type SafetyService struct {
	cache   *cache.Client
	store   GuidelineStore
	objects storage.ObjectStore
	clock   Clock
}

func NewSafetyService(c *cache.Client, store GuidelineStore, objects storage.ObjectStore, clock Clock) *SafetyService {
	if clock == nil {
		clock = RealClock{}
	}
	return &SafetyService{cache: c, store: store, objects: objects, clock: clock}
}

// List returns guidelines most urgent first, then by title
func (s *SafetyService) List(ctx context.Context, filters dtos.GuidelineFilters) ([]gormModels.SafetyGuideline, error) {
	if filters.Priority != "" && !filters.Priority.Valid() {
		return nil, apperrors.Newf(constants.ErrCodeInvalidStatus, "unknown priority %q", filters.Priority)
	}
	key := cache.NewKey(constants.KeySafetyGuidelines).WithFilters(filters.Values())
	return cache.Fetch(ctx, s.cache, key, staleGuidelines, func(ctx context.Context) ([]gormModels.SafetyGuideline, error) {
		return s.store.List(ctx, filters)
	})
}

// Grouped is List folded by category
func (s *SafetyService) Grouped(ctx context.Context, filters dtos.GuidelineFilters) ([]dtos.GuidelineGroup, error) {
	guidelines, err := s.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return GroupByCategory(guidelines), nil
}

// GroupByCategory buckets guidelines in display order. Unknown categories
// land in general. Order inside a bucket is preserved.
func GroupByCategory(guidelines []gormModels.SafetyGuideline) []dtos.GuidelineGroup {
	index := make(map[constants.GuidelineCategory]int, len(constants.GuidelineCategories))
	groups := make([]dtos.GuidelineGroup, len(constants.GuidelineCategories))
	for i, c := range constants.GuidelineCategories {
		index[c] = i
		groups[i] = dtos.GuidelineGroup{Category: c, Guidelines: []gormModels.SafetyGuideline{}}
	}

	for _, g := range guidelines {
		i, ok := index[g.Category]
		if !ok {
			i = index[constants.CategoryGeneral]
		}
		groups[i].Guidelines = append(groups[i].Guidelines, g)
	}
	return groups
}

func (s *SafetyService) Create(ctx context.Context, in dtos.GuidelineInput) (*gormModels.SafetyGuideline, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	g, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return g, nil
}

func (s *SafetyService) Update(ctx context.Context, id string, patch dtos.GuidelinePatch) (*gormModels.SafetyGuideline, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	g, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return g, nil
}

func (s *SafetyService) Remove(ctx context.Context, id string) (string, error) {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return "", err
	}
	s.invalidate()
	return removed, nil
}

// UploadDocument stores a document for a guideline and links it
func (s *SafetyService) UploadDocument(ctx context.Context, guidelineID string, u Upload) (dtos.UploadResult, error) {
	if claims := auth.GetUserClaims(ctx); claims == nil || !claims.HasPermission(auth.ActionManageSafetyGuidelines) {
		return dtos.UploadResult{}, apperrors.PermissionDenied("only chiefs can upload safety documents")
	}
	if _, err := s.store.GetByID(ctx, guidelineID); err != nil {
		return dtos.UploadResult{}, err
	}

	key := fmt.Sprintf("safety/%s-%d.%s", guidelineID, s.clock.Now().UnixMilli(), u.ext())
	res, err := putDocument(ctx, s.objects, key, u)
	if err != nil {
		return dtos.UploadResult{}, err
	}
	if _, err := s.Update(ctx, guidelineID, dtos.GuidelinePatch{DocumentURL: &res.PublicURL}); err != nil {
		return dtos.UploadResult{}, err
	}
	return res, nil
}

func (s *SafetyService) invalidate() {
	invalidate(s.cache, cache.NewKey(constants.KeySafetyGuidelines))
}
