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

// FlightRepository manages the flight log with GORM
type FlightRepository struct {
	base
}

func NewFlightRepository(db *gorm.DB, changes ChangePublisher) *FlightRepository {
	return &FlightRepository{base{db: db, changes: changes}}
}

// ListByMission returns a mission's flights newest first with the pilot preloaded
func (r *FlightRepository) ListByMission(ctx context.Context, missionID string) ([]gormModels.Flight, error) {
	var flights []gormModels.Flight

	err := r.db.WithContext(ctx).
		Preload("Pilot").
		Where("mission_id = ?", missionID).
		Order("flight_date DESC").
		Order("created_at DESC").
		Find(&flights).Error
	if err != nil {
		return nil, storeError("list", "flights", missionID, err)
	}

	return flights, nil
}

// Create logs a flight. Pilots log their own flights, chiefs may log for anyone.
func (r *FlightRepository) Create(ctx context.Context, in dtos.FlightInput) (*gormModels.Flight, error) {
	actor, err := authorize(ctx, auth.ActionLogFlight)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.PilotID == "" {
		in.PilotID = actor.UserID()
	}
	if err := canManageFlightOf(actor, in.PilotID); err != nil {
		return nil, err
	}

	flight := gormModels.Flight{
		MissionID:       in.MissionID,
		PilotID:         in.PilotID,
		FlightDate:      in.FlightDate,
		DurationMinutes: in.DurationMinutes,
		DroneModel:      in.DroneModel,
		Notes:           in.Notes,
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&gormModels.Mission{}).Where("id = ?", in.MissionID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return apperrors.NotFound("mission", in.MissionID)
		}
		return tx.Create(&flight).Error
	})
	if err != nil {
		return nil, storeError("create", "flight", "", err)
	}

	r.emit(ctx, constants.TableFlights, realtime.EventInsert, &flight, nil)
	return &flight, nil
}

func (r *FlightRepository) Update(ctx context.Context, id string, patch dtos.FlightPatch) (*gormModels.Flight, error) {
	actor, err := authorize(ctx, auth.ActionLogFlight)
	if err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var before, after gormModels.Flight
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&before).Error; err != nil {
			return err
		}
		if err := canManageFlightOf(actor, before.PilotID); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.FlightDate != nil {
			updates["flight_date"] = *patch.FlightDate
		}
		if patch.DurationMinutes != nil {
			updates["duration_minutes"] = *patch.DurationMinutes
		}
		if patch.DroneModel != nil {
			updates["drone_model"] = *patch.DroneModel
		}
		if patch.Notes != nil {
			updates["notes"] = *patch.Notes
		}
		if len(updates) > 0 {
			if err := tx.Model(&gormModels.Flight{ID: id}).Updates(updates).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", id).First(&after).Error
	})
	if err != nil {
		return nil, storeError("update", "flight", id, err)
	}

	r.emit(ctx, constants.TableFlights, realtime.EventUpdate, &after, &before)
	return &after, nil
}

// Delete removes a flight and returns it so callers know which mission changed
func (r *FlightRepository) Delete(ctx context.Context, id string) (*gormModels.Flight, error) {
	actor, err := authorize(ctx, auth.ActionLogFlight)
	if err != nil {
		return nil, err
	}

	var flight gormModels.Flight
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&flight).Error; err != nil {
			return err
		}
		if err := canManageFlightOf(actor, flight.PilotID); err != nil {
			return err
		}
		return tx.Delete(&gormModels.Flight{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, storeError("delete", "flight", id, err)
	}

	r.emit(ctx, constants.TableFlights, realtime.EventDelete, nil, &flight)
	return &flight, nil
}

func canManageFlightOf(actor auth.UserClaims, pilotID string) error {
	if pilotID == actor.UserID() || actor.HasPermission(auth.ActionManageAnyFlight) {
		return nil
	}
	return apperrors.PermissionDenied("pilots can only manage their own flights")
}
