package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skywatch/crewdeck/internal/aggregation"
	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
	gormModels "skywatch/crewdeck/internal/models/gorm"
	"skywatch/crewdeck/internal/realtime"
)

// AvailabilityRepository manages availability ranges with GORM
type AvailabilityRepository struct {
	base
}

func NewAvailabilityRepository(db *gorm.DB, changes ChangePublisher) *AvailabilityRepository {
	return &AvailabilityRepository{base{db: db, changes: changes}}
}

// ListByUser returns a user's ranges, earliest first
func (r *AvailabilityRepository) ListByUser(ctx context.Context, userID string) ([]gormModels.Availability, error) {
	var rows []gormModels.Availability

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storeError("list", "availabilities", userID, err)
	}

	return rows, nil
}

// ListAvailableInRange returns available ranges intersecting [from, to]
// with the owning profile preloaded.
func (r *AvailabilityRepository) ListAvailableInRange(ctx context.Context, from, to string) ([]gormModels.Availability, error) {
	var rows []gormModels.Availability

	err := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", constants.AvailabilityAvailable).
		Where("start_date <= ? AND end_date >= ?", to, from).
		Order("start_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storeError("list", "availabilities", "", err)
	}

	return rows, nil
}

// GetByID retrieves one range
func (r *AvailabilityRepository) GetByID(ctx context.Context, id string) (*gormModels.Availability, error) {
	var row gormModels.Availability
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, storeError("fetch", "availability", id, err)
	}
	return &row, nil
}

// Create inserts a range for the caller. The owner's profile row is locked
// before the overlap check, so writers for one user are serialised.
func (r *AvailabilityRepository) Create(ctx context.Context, userID string, in dtos.AvailabilityInput) (*gormModels.Availability, error) {
	actor, err := authorize(ctx, auth.ActionManageOwnAvailability)
	if err != nil {
		return nil, err
	}
	if actor.UserID() != userID {
		return nil, apperrors.PermissionDenied("availabilities can only be managed by their owner")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	row := gormModels.Availability{
		UserID:    userID,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Status:    in.Status,
		Notes:     in.Notes,
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOwner(tx, userID); err != nil {
			return err
		}
		if err := checkOverlap(tx, userID, row.StartDate, row.EndDate, ""); err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return nil, storeError("create", "availability", "", err)
	}

	r.emit(ctx, constants.TableAvailabilities, realtime.EventInsert, &row, nil)
	return &row, nil
}

// Update applies patch to one of the caller's ranges
func (r *AvailabilityRepository) Update(ctx context.Context, id string, patch dtos.AvailabilityPatch) (*gormModels.Availability, error) {
	actor, err := authorize(ctx, auth.ActionManageOwnAvailability)
	if err != nil {
		return nil, err
	}

	var before, after gormModels.Availability
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&before).Error; err != nil {
			return err
		}
		if before.UserID != actor.UserID() {
			return apperrors.PermissionDenied("availabilities can only be managed by their owner")
		}

		after = before
		if patch.StartDate != nil {
			after.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			after.EndDate = *patch.EndDate
		}
		if patch.Status != nil {
			after.Status = *patch.Status
		}
		if patch.Notes != nil {
			after.Notes = patch.Notes
		}
		if err := dtos.ValidateRange(after.StartDate, after.EndDate, after.Status); err != nil {
			return err
		}
		if err := lockOwner(tx, after.UserID); err != nil {
			return err
		}
		if err := checkOverlap(tx, after.UserID, after.StartDate, after.EndDate, id); err != nil {
			return err
		}

		return tx.Model(&gormModels.Availability{ID: id}).Updates(map[string]interface{}{
			"start_date": after.StartDate,
			"end_date":   after.EndDate,
			"status":     after.Status,
			"notes":      after.Notes,
		}).Error
	})
	if err != nil {
		return nil, storeError("update", "availability", id, err)
	}

	r.emit(ctx, constants.TableAvailabilities, realtime.EventUpdate, &after, &before)
	return &after, nil
}

// Delete removes one of the caller's ranges and returns its id
func (r *AvailabilityRepository) Delete(ctx context.Context, id string) (string, error) {
	actor, err := authorize(ctx, auth.ActionManageOwnAvailability)
	if err != nil {
		return "", err
	}

	var row gormModels.Availability
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return err
		}
		if row.UserID != actor.UserID() {
			return apperrors.PermissionDenied("availabilities can only be managed by their owner")
		}
		return tx.Delete(&gormModels.Availability{}, "id = ?", id).Error
	})
	if err != nil {
		return "", storeError("delete", "availability", id, err)
	}

	r.emit(ctx, constants.TableAvailabilities, realtime.EventDelete, nil, &row)
	return id, nil
}

// lockOwner takes a row lock on the profile owning the ranges. SQLite has no
// row locks and serialises writers itself, so the clause is dropped there.
func lockOwner(tx *gorm.DB, userID string) error {
	return ownerLockQuery(tx, userID).Error
}

func ownerLockQuery(tx *gorm.DB, userID string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		First(&gormModels.Profile{})
}

func checkOverlap(tx *gorm.DB, userID, start, end, excludeID string) error {
	var existing []gormModels.Availability
	if err := tx.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return err
	}
	if aggregation.Overlaps(existing, start, end, excludeID) {
		return apperrors.New(constants.ErrCodeAvailabilityOverlap, nil)
	}
	return nil
}
