package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
	gormModels "skywatch/crewdeck/internal/models/gorm"
	"skywatch/crewdeck/internal/realtime"
)

// ProfileRepository manages team member profiles with GORM
type ProfileRepository struct {
	base
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB, changes ChangePublisher) *ProfileRepository {
	return &ProfileRepository{base{db: db, changes: changes}}
}

// EnsureProfile returns the profile for an authenticated identity, creating
// it as a pilot on first sight.
func (r *ProfileRepository) EnsureProfile(ctx context.Context, id, email string) (*gormModels.Profile, error) {
	var profile gormModels.Profile

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeError("fetch", "profile", id, err)
	}
	return r.insertProfile(ctx, id, email)
}

// insertProfile creates the pilot profile unless a concurrent first request
// already did, in which case the stored row is returned.
func (r *ProfileRepository) insertProfile(ctx context.Context, id, email string) (*gormModels.Profile, error) {
	profile := gormModels.Profile{ID: id, Email: email, Role: constants.RolePilot}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&profile)
	if res.Error != nil {
		return nil, storeError("create", "profile", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var existing gormModels.Profile
		if err := r.db.WithContext(ctx).Where("id = ?", id).First(&existing).Error; err != nil {
			return nil, storeError("fetch", "profile", id, err)
		}
		return &existing, nil
	}
	r.emit(ctx, constants.TableProfiles, realtime.EventInsert, &profile, nil)

	return &profile, nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*gormModels.Profile, error) {
	var profile gormModels.Profile

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&profile).Error
	if err != nil {
		return nil, storeError("fetch", "profile", id, err)
	}

	return &profile, nil
}

// List returns every team member ordered by name
func (r *ProfileRepository) List(ctx context.Context) ([]gormModels.Profile, error) {
	var profiles []gormModels.Profile

	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Order("email ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, storeError("list", "profiles", "", err)
	}

	return profiles, nil
}

// Count returns the team size
func (r *ProfileRepository) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&gormModels.Profile{}).Count(&n).Error; err != nil {
		return 0, storeError("count", "profiles", "", err)
	}
	return int(n), nil
}

// Update applies patch to the caller's own profile
func (r *ProfileRepository) Update(ctx context.Context, id string, patch dtos.ProfilePatch) (*gormModels.Profile, error) {
	actor, err := authorize(ctx, auth.ActionUpdateOwnProfile)
	if err != nil {
		return nil, err
	}
	if actor.UserID() != id {
		return nil, apperrors.PermissionDenied("profiles can only be edited by their owner")
	}

	var before, after gormModels.Profile
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&before).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.FullName != nil {
			updates["full_name"] = *patch.FullName
		}
		if patch.Phone != nil {
			updates["phone"] = *patch.Phone
		}
		if patch.AvatarURL != nil {
			updates["avatar_url"] = *patch.AvatarURL
		}
		if len(updates) > 0 {
			if err := tx.Model(&gormModels.Profile{ID: id}).Updates(updates).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", id).First(&after).Error
	})
	if err != nil {
		return nil, storeError("update", "profile", id, err)
	}

	r.emit(ctx, constants.TableProfiles, realtime.EventUpdate, &after, &before)
	return &after, nil
}
