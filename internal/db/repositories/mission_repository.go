package repositories

import (
	"context"

	"gorm.io/gorm"

	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
	gormModels "skywatch/crewdeck/internal/models/gorm"
	"skywatch/crewdeck/internal/realtime"
)

// MissionRepository manages missions with GORM
type MissionRepository struct {
	base
}

func NewMissionRepository(db *gorm.DB, changes ChangePublisher) *MissionRepository {
	return &MissionRepository{base{db: db, changes: changes}}
}

// List returns missions matching filters, latest first, with the chief preloaded
func (r *MissionRepository) List(ctx context.Context, filters dtos.MissionFilters) ([]gormModels.Mission, error) {
	var missions []gormModels.Mission

	q := r.db.WithContext(ctx).Preload("Chief")
	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.From != "" {
		q = q.Where("mission_date >= ?", filters.From)
	}
	if filters.To != "" {
		q = q.Where("mission_date <= ?", filters.To)
	}

	if err := q.Order("mission_date DESC").Find(&missions).Error; err != nil {
		return nil, storeError("list", "missions", "", err)
	}
	return missions, nil
}

// GetByID retrieves a mission with its chief
func (r *MissionRepository) GetByID(ctx context.Context, id string) (*gormModels.Mission, error) {
	var mission gormModels.Mission

	err := r.db.WithContext(ctx).
		Preload("Chief").
		Where("id = ?", id).
		First(&mission).Error
	if err != nil {
		return nil, storeError("fetch", "mission", id, err)
	}

	return &mission, nil
}

// Upcoming returns planned or running missions from today on, soonest first
func (r *MissionRepository) Upcoming(ctx context.Context, today string, limit int) ([]gormModels.Mission, error) {
	var missions []gormModels.Mission

	err := r.db.WithContext(ctx).
		Preload("Chief").
		Where("mission_date >= ?", today).
		Where("status IN ?", []string{string(constants.MissionPlanned), string(constants.MissionInProgress)}).
		Order("mission_date ASC").
		Limit(limit).
		Find(&missions).Error
	if err != nil {
		return nil, storeError("list", "upcoming missions", "", err)
	}

	return missions, nil
}

// Create inserts a mission led by the caller
func (r *MissionRepository) Create(ctx context.Context, in dtos.MissionInput) (*gormModels.Mission, error) {
	actor, err := authorize(ctx, auth.ActionCreateMission)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	chiefID := actor.UserID()
	mission := gormModels.Mission{
		Title:       in.Title,
		Description: in.Description,
		MissionDate: in.MissionDate,
		Location:    in.Location,
		Status:      in.Status,
		ChiefID:     &chiefID,
	}
	if err := r.db.WithContext(ctx).Create(&mission).Error; err != nil {
		return nil, storeError("create", "mission", "", err)
	}

	r.emit(ctx, constants.TableMissions, realtime.EventInsert, &mission, nil)
	return &mission, nil
}

// Update applies patch. Any valid status may replace any other.
func (r *MissionRepository) Update(ctx context.Context, id string, patch dtos.MissionPatch) (*gormModels.Mission, error) {
	if _, err := authorize(ctx, auth.ActionUpdateMission); err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var before, after gormModels.Mission
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
		if patch.MissionDate != nil {
			updates["mission_date"] = *patch.MissionDate
		}
		if patch.Location != nil {
			updates["location"] = *patch.Location
		}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if len(updates) > 0 {
			if err := tx.Model(&gormModels.Mission{ID: id}).Updates(updates).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", id).First(&after).Error
	})
	if err != nil {
		return nil, storeError("update", "mission", id, err)
	}

	r.emit(ctx, constants.TableMissions, realtime.EventUpdate, &after, &before)
	return &after, nil
}

// Delete removes a mission together with its flights. Each removed flight
// is published as its own delete so mission-scoped watchers see it.
func (r *MissionRepository) Delete(ctx context.Context, id string) (string, error) {
	if _, err := authorize(ctx, auth.ActionDeleteMission); err != nil {
		return "", err
	}

	var mission gormModels.Mission
	var flights []gormModels.Flight
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&mission).Error; err != nil {
			return err
		}
		if err := tx.Where("mission_id = ?", id).Find(&flights).Error; err != nil {
			return err
		}
		if err := tx.Where("mission_id = ?", id).Delete(&gormModels.Flight{}).Error; err != nil {
			return err
		}
		return tx.Delete(&gormModels.Mission{}, "id = ?", id).Error
	})
	if err != nil {
		return "", storeError("delete", "mission", id, err)
	}

	for i := range flights {
		r.emit(ctx, constants.TableFlights, realtime.EventDelete, nil, &flights[i])
	}
	r.emit(ctx, constants.TableMissions, realtime.EventDelete, nil, &mission)
	return id, nil
}
