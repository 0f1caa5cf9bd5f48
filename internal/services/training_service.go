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
	"skywatch/crewdeck/internal/realtime"
	"skywatch/crewdeck/internal/storage"
)

// TrainingService covers the catalogue and per-user certifications
type TrainingService struct {
	cache    *cache.Client
	store    TrainingStore
	objects  storage.ObjectStore
	realtime *realtime.Manager
	clock    Clock
}

func NewTrainingService(c *cache.Client, store TrainingStore, objects storage.ObjectStore, rt *realtime.Manager, clock Clock) *TrainingService {
	if clock == nil {
		clock = RealClock{}
	}
	return &TrainingService{cache: c, store: store, objects: objects, realtime: rt, clock: clock}
}

func (s *TrainingService) List(ctx context.Context) ([]gormModels.Training, error) {
	return cache.Fetch(ctx, s.cache, cache.NewKey(constants.KeyTrainings), staleTrainings, s.store.List)
}

func (s *TrainingService) Create(ctx context.Context, in dtos.TrainingInput) (*gormModels.Training, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	t, err := s.store.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidateCatalogue()
	return t, nil
}

func (s *TrainingService) Update(ctx context.Context, id string, patch dtos.TrainingPatch) (*gormModels.Training, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	t, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidateCatalogue()
	return t, nil
}

func (s *TrainingService) Remove(ctx context.Context, id string) (string, error) {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return "", err
	}
	s.invalidateCatalogue()
	invalidate(s.cache, cache.NewKey(constants.KeyUserTrainings))
	return removed, nil
}

// Certifications lists a user's completed trainings, most recent first
func (s *TrainingService) Certifications(ctx context.Context, userID string) ([]gormModels.UserTraining, error) {
	if userID == "" {
		return nil, apperrors.Validation("user id required")
	}
	key := cache.NewKey(constants.KeyUserTrainings, userID)
	return cache.Fetch(ctx, s.cache, key, staleCertifications, func(ctx context.Context) ([]gormModels.UserTraining, error) {
		return s.store.ListCertifications(ctx, userID)
	})
}

func (s *TrainingService) AddCertification(ctx context.Context, in dtos.CertificationInput) (*gormModels.UserTraining, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	cert, err := s.store.AddCertification(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidateCertifications()
	return cert, nil
}

func (s *TrainingService) RemoveCertification(ctx context.Context, id string) (string, error) {
	cert, err := s.store.RemoveCertification(ctx, id)
	if err != nil {
		return "", err
	}
	s.invalidateCertifications()
	return cert.ID, nil
}

// WithStatus joins the catalogue with the user's certifications
func (s *TrainingService) WithStatus(ctx context.Context, userID string) ([]dtos.TrainingWithStatus, error) {
	if userID == "" {
		return nil, apperrors.Validation("user id required")
	}
	key := cache.NewKey(constants.KeyTrainingsWithStatus, userID)
	return cache.Fetch(ctx, s.cache, key, staleCertifications, func(ctx context.Context) ([]dtos.TrainingWithStatus, error) {
		trainings, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		certs, err := s.Certifications(ctx, userID)
		if err != nil {
			return nil, err
		}
		return joinTrainingStatus(trainings, certs), nil
	})
}

func joinTrainingStatus(trainings []gormModels.Training, certs []gormModels.UserTraining) []dtos.TrainingWithStatus {
	byTraining := make(map[string]gormModels.UserTraining, len(certs))
	for _, c := range certs {
		if _, seen := byTraining[c.TrainingID]; !seen {
			byTraining[c.TrainingID] = c
		}
	}

	out := make([]dtos.TrainingWithStatus, 0, len(trainings))
	for _, t := range trainings {
		row := dtos.TrainingWithStatus{Training: t}
		if c, ok := byTraining[t.ID]; ok {
			row.Completed = true
			row.Certification = &c
		}
		out = append(out, row)
	}
	return out
}

// UploadCertificate stores a certificate document and returns its URL
func (s *TrainingService) UploadCertificate(ctx context.Context, userID, trainingID string, u Upload) (dtos.UploadResult, error) {
	if claims := auth.GetUserClaims(ctx); claims == nil || !claims.HasPermission(auth.ActionManageCertifications) {
		return dtos.UploadResult{}, apperrors.PermissionDenied("only chiefs can upload certificates")
	}
	if userID == "" || trainingID == "" {
		return dtos.UploadResult{}, apperrors.Validation("user id and training id required")
	}
	key := fmt.Sprintf("certificates/%s/%s-%d.%s", userID, trainingID, s.clock.Now().UnixMilli(), u.ext())
	return putDocument(ctx, s.objects, key, u)
}

// Watch keeps the user's certification keys in sync with the change feed
func (s *TrainingService) Watch(ctx context.Context, userID string) *realtime.Subscription {
	if s.realtime == nil || userID == "" {
		return nil
	}
	return s.realtime.Subscribe(ctx, realtime.CertificationsForUser(userID))
}

func (s *TrainingService) invalidateCatalogue() {
	invalidate(s.cache, cache.NewKey(constants.KeyTrainings), cache.NewKey(constants.KeyTrainingsWithStatus))
}

func (s *TrainingService) invalidateCertifications() {
	invalidate(s.cache, cache.NewKey(constants.KeyUserTrainings), cache.NewKey(constants.KeyTrainingsWithStatus))
}
