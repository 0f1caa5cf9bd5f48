package api

import (
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/db/repositories"
	"skywatch/crewdeck/internal/realtime"
	"skywatch/crewdeck/internal/services"
	"skywatch/crewdeck/internal/storage"
)

type Repositories struct {
	Profiles     *repositories.ProfileRepository
	Availability *repositories.AvailabilityRepository
	Missions     *repositories.MissionRepository
	Flights      *repositories.FlightRepository
	Trainings    *repositories.TrainingRepository
	Safety       *repositories.SafetyGuidelineRepository
	Stats        *repositories.StatsRepository
}

type Services struct {
	Profiles     *services.ProfileService
	Availability *services.AvailabilityService
	Missions     *services.MissionService
	Flights      *services.FlightService
	Trainings    *services.TrainingService
	Safety       *services.SafetyService
	Team         *services.TeamService
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Cache    *cache.Client
	Realtime *realtime.Manager
	Objects  storage.ObjectStore
}

// InitDependencies wires repositories and services. Repositories publish
// committed writes on feed; services share the one cache client.
func InitDependencies(
	gdb *gorm.DB,
	sqlDB *sqlx.DB,
	c *cache.Client,
	feed realtime.Feed,
	rt *realtime.Manager,
	objects storage.ObjectStore,
	clock services.Clock,
) *Dependencies {
	if clock == nil {
		clock = services.RealClock{}
	}

	repos := &Repositories{
		Profiles:     repositories.NewProfileRepository(gdb, feed),
		Availability: repositories.NewAvailabilityRepository(gdb, feed),
		Missions:     repositories.NewMissionRepository(gdb, feed),
		Flights:      repositories.NewFlightRepository(gdb, feed),
		Trainings:    repositories.NewTrainingRepository(gdb, feed),
		Safety:       repositories.NewSafetyGuidelineRepository(gdb, feed),
		Stats:        repositories.NewStatsRepository(sqlDB),
	}

	svcs := &Services{
		Profiles:     services.NewProfileService(c, repos.Profiles, objects, rt),
		Availability: services.NewAvailabilityService(c, repos.Availability, rt),
		Missions:     services.NewMissionService(c, repos.Missions, clock),
		Flights:      services.NewFlightService(c, repos.Flights, rt),
		Trainings:    services.NewTrainingService(c, repos.Trainings, objects, rt, clock),
		Safety:       services.NewSafetyService(c, repos.Safety, objects, clock),
		Team:         services.NewTeamService(c, repos.Stats, repos.Profiles, repos.Availability, clock),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Cache:    c,
		Realtime: rt,
		Objects:  objects,
	}
}
