package services

import (
	"context"
	"time"

	"skywatch/crewdeck/internal/models/dtos"
	gormModels "skywatch/crewdeck/internal/models/gorm"
)

// The stores below are satisfied by the repositories package.

type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*gormModels.Profile, error)
	List(ctx context.Context) ([]gormModels.Profile, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id string, patch dtos.ProfilePatch) (*gormModels.Profile, error)
}

type AvailabilityStore interface {
	ListByUser(ctx context.Context, userID string) ([]gormModels.Availability, error)
	ListAvailableInRange(ctx context.Context, from, to string) ([]gormModels.Availability, error)
	GetByID(ctx context.Context, id string) (*gormModels.Availability, error)
	Create(ctx context.Context, userID string, in dtos.AvailabilityInput) (*gormModels.Availability, error)
	Update(ctx context.Context, id string, patch dtos.AvailabilityPatch) (*gormModels.Availability, error)
	Delete(ctx context.Context, id string) (string, error)
}

type MissionStore interface {
	List(ctx context.Context, filters dtos.MissionFilters) ([]gormModels.Mission, error)
	GetByID(ctx context.Context, id string) (*gormModels.Mission, error)
	Upcoming(ctx context.Context, today string, limit int) ([]gormModels.Mission, error)
	Create(ctx context.Context, in dtos.MissionInput) (*gormModels.Mission, error)
	Update(ctx context.Context, id string, patch dtos.MissionPatch) (*gormModels.Mission, error)
	Delete(ctx context.Context, id string) (string, error)
}

type FlightStore interface {
	ListByMission(ctx context.Context, missionID string) ([]gormModels.Flight, error)
	Create(ctx context.Context, in dtos.FlightInput) (*gormModels.Flight, error)
	Update(ctx context.Context, id string, patch dtos.FlightPatch) (*gormModels.Flight, error)
	Delete(ctx context.Context, id string) (*gormModels.Flight, error)
}

type TrainingStore interface {
	List(ctx context.Context) ([]gormModels.Training, error)
	Create(ctx context.Context, in dtos.TrainingInput) (*gormModels.Training, error)
	Update(ctx context.Context, id string, patch dtos.TrainingPatch) (*gormModels.Training, error)
	Delete(ctx context.Context, id string) (string, error)
	ListCertifications(ctx context.Context, userID string) ([]gormModels.UserTraining, error)
	AddCertification(ctx context.Context, in dtos.CertificationInput) (*gormModels.UserTraining, error)
	RemoveCertification(ctx context.Context, id string) (*gormModels.UserTraining, error)
}

type GuidelineStore interface {
	List(ctx context.Context, filters dtos.GuidelineFilters) ([]gormModels.SafetyGuideline, error)
	GetByID(ctx context.Context, id string) (*gormModels.SafetyGuideline, error)
	Create(ctx context.Context, in dtos.GuidelineInput) (*gormModels.SafetyGuideline, error)
	Update(ctx context.Context, id string, patch dtos.GuidelinePatch) (*gormModels.SafetyGuideline, error)
	Delete(ctx context.Context, id string) (string, error)
}

type StatsStore interface {
	TeamStats(ctx context.Context, today time.Time) (*dtos.TeamStats, error)
}
