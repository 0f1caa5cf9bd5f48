package repositories

import (
	"context"

	"gorm.io/gorm"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
	gormModels "skywatch/crewdeck/internal/models/gorm"
	"skywatch/crewdeck/internal/realtime"
)

// TrainingRepository manages the training catalogue and certifications
type TrainingRepository struct {
	base
}

func NewTrainingRepository(db *gorm.DB, changes ChangePublisher) *TrainingRepository {
	return &TrainingRepository{base{db: db, changes: changes}}
}

// List returns the catalogue by title
func (r *TrainingRepository) List(ctx context.Context) ([]gormModels.Training, error) {
	var trainings []gormModels.Training

	if err := r.db.WithContext(ctx).Order("title ASC").Find(&trainings).Error; err != nil {
		return nil, storeError("list", "trainings", "", err)
	}
	return trainings, nil
}

func (r *TrainingRepository) Create(ctx context.Context, in dtos.TrainingInput) (*gormModels.Training, error) {
	if _, err := authorize(ctx, auth.ActionManageTrainings); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	training := gormModels.Training{
		Title:         in.Title,
		Description:   in.Description,
		DurationHours: in.DurationHours,
		Category:      in.Category,
		IsRequired:    in.IsRequired,
		DocumentURL:   in.DocumentURL,
	}
	if err := r.db.WithContext(ctx).Create(&training).Error; err != nil {
		return nil, storeError("create", "training", "", err)
	}

	r.emit(ctx, constants.TableTrainings, realtime.EventInsert, &training, nil)
	return &training, nil
}

func (r *TrainingRepository) Update(ctx context.Context, id string, patch dtos.TrainingPatch) (*gormModels.Training, error) {
	if _, err := authorize(ctx, auth.ActionManageTrainings); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var before, after gormModels.Training
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&before).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.DurationHours != nil {
			updates["duration_hours"] = *patch.DurationHours
		}
		if patch.Category != nil {
			updates["category"] = *patch.Category
		}
		if patch.IsRequired != nil {
			updates["is_required"] = *patch.IsRequired
		}
		if patch.DocumentURL != nil {
			updates["document_url"] = *patch.DocumentURL
		}
		if len(updates) > 0 {
			if err := tx.Model(&gormModels.Training{ID: id}).Updates(updates).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", id).First(&after).Error
	})
	if err != nil {
		return nil, storeError("update", "training", id, err)
	}

	r.emit(ctx, constants.TableTrainings, realtime.EventUpdate, &after, &before)
	return &after, nil
}

// Delete removes a training and every certification for it, publishing a
// delete for each certification.
func (r *TrainingRepository) Delete(ctx context.Context, id string) (string, error) {
	if _, err := authorize(ctx, auth.ActionManageTrainings); err != nil {
		return "", err
	}

	var training gormModels.Training
	var certs []gormModels.UserTraining
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&training).Error; err != nil {
			return err
		}
		if err := tx.Where("training_id = ?", id).Find(&certs).Error; err != nil {
			return err
		}
		if err := tx.Where("training_id = ?", id).Delete(&gormModels.UserTraining{}).Error; err != nil {
			return err
		}
		return tx.Delete(&gormModels.Training{}, "id = ?", id).Error
	})
	if err != nil {
		return "", storeError("delete", "training", id, err)
	}

	for i := range certs {
		r.emit(ctx, constants.TableUserTrainings, realtime.EventDelete, nil, &certs[i])
	}
	r.emit(ctx, constants.TableTrainings, realtime.EventDelete, nil, &training)
	return id, nil
}

// ListCertifications returns a user's certifications, most recent first,
// with the training preloaded.
func (r *TrainingRepository) ListCertifications(ctx context.Context, userID string) ([]gormModels.UserTraining, error) {
	var certs []gormModels.UserTraining

	err := r.db.WithContext(ctx).
		Preload("Training").
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&certs).Error
	if err != nil {
		return nil, storeError("list", "certifications", userID, err)
	}

	return certs, nil
}

// AddCertification records a completed training, validated by the caller
func (r *TrainingRepository) AddCertification(ctx context.Context, in dtos.CertificationInput) (*gormModels.UserTraining, error) {
	actor, err := authorize(ctx, auth.ActionManageCertifications)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	validator := actor.UserID()
	cert := gormModels.UserTraining{
		UserID:         in.UserID,
		TrainingID:     in.TrainingID,
		CompletedAt:    in.CompletedAt,
		ExpiresAt:      in.ExpiresAt,
		CertificateURL: in.CertificateURL,
		ValidatedBy:    &validator,
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&gormModels.Training{}).Where("id = ?", in.TrainingID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperrors.NotFound("training", in.TrainingID)
		}
		if err := tx.Create(&cert).Error; err != nil {
			return err
		}
		return tx.Preload("Training").Where("id = ?", cert.ID).First(&cert).Error
	})
	if err != nil {
		return nil, storeError("create", "certification", "", err)
	}

	r.emit(ctx, constants.TableUserTrainings, realtime.EventInsert, &cert, nil)
	return &cert, nil
}

// RemoveCertification deletes a certification and returns it
func (r *TrainingRepository) RemoveCertification(ctx context.Context, id string) (*gormModels.UserTraining, error) {
	if _, err := authorize(ctx, auth.ActionManageCertifications); err != nil {
		return nil, err
	}

	var cert gormModels.UserTraining
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&cert).Error; err != nil {
			return err
		}
		return tx.Delete(&gormModels.UserTraining{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, storeError("delete", "certification", id, err)
	}

	r.emit(ctx, constants.TableUserTrainings, realtime.EventDelete, nil, &cert)
	return &cert, nil
}
