package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/cache"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
	gormModels "skywatch/crewdeck/internal/models/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var june4 = fixedClock{now: time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC)}

func newTestCache() *cache.Client {
	return cache.NewClient(cache.Options{RetryDelay: time.Millisecond})
}

func as(id string, role constants.Role) context.Context {
	return auth.SetUserClaims(context.Background(), &auth.JWTClaims{
		UserUUID:   id,
		EmailValue: id + "@example.com",
		RoleValue:  role,
	})
}

// Mock ProfileStore
type mockProfileStore struct {
	getFunc    func(ctx context.Context, id string) (*gormModels.Profile, error)
	updateFunc func(ctx context.Context, id string, patch dtos.ProfilePatch) (*gormModels.Profile, error)
	gets       int32
}

func (m *mockProfileStore) GetByID(ctx context.Context, id string) (*gormModels.Profile, error) {
	atomic.AddInt32(&m.gets, 1)
	return m.getFunc(ctx, id)
}
func (m *mockProfileStore) List(ctx context.Context) ([]gormModels.Profile, error) { return nil, nil }
func (m *mockProfileStore) Count(ctx context.Context) (int, error)                 { return 0, nil }
func (m *mockProfileStore) Update(ctx context.Context, id string, patch dtos.ProfilePatch) (*gormModels.Profile, error) {
	return m.updateFunc(ctx, id, patch)
}

// Mock FlightStore
type mockFlightStore struct {
	createFunc func(ctx context.Context, in dtos.FlightInput) (*gormModels.Flight, error)
	lists      int32
}

func (m *mockFlightStore) ListByMission(ctx context.Context, missionID string) ([]gormModels.Flight, error) {
	atomic.AddInt32(&m.lists, 1)
	return []gormModels.Flight{}, nil
}
func (m *mockFlightStore) Create(ctx context.Context, in dtos.FlightInput) (*gormModels.Flight, error) {
	return m.createFunc(ctx, in)
}
func (m *mockFlightStore) Update(ctx context.Context, id string, patch dtos.FlightPatch) (*gormModels.Flight, error) {
	return nil, nil
}
func (m *mockFlightStore) Delete(ctx context.Context, id string) (*gormModels.Flight, error) {
	return &gormModels.Flight{ID: id}, nil
}

// Mock StatsStore
type mockStatsStore struct {
	calls int32
}

func (m *mockStatsStore) TeamStats(ctx context.Context, today time.Time) (*dtos.TeamStats, error) {
	n := atomic.AddInt32(&m.calls, 1)
	return &dtos.TeamStats{TotalMembers: int(n)}, nil
}

// Mock AvailabilityStore
type mockAvailabilityStore struct {
	rows    []gormModels.Availability
	creates int32
}

func (m *mockAvailabilityStore) ListByUser(ctx context.Context, userID string) ([]gormModels.Availability, error) {
	return m.rows, nil
}
func (m *mockAvailabilityStore) ListAvailableInRange(ctx context.Context, from, to string) ([]gormModels.Availability, error) {
	return m.rows, nil
}
func (m *mockAvailabilityStore) GetByID(ctx context.Context, id string) (*gormModels.Availability, error) {
	return nil, nil
}
func (m *mockAvailabilityStore) Create(ctx context.Context, userID string, in dtos.AvailabilityInput) (*gormModels.Availability, error) {
	atomic.AddInt32(&m.creates, 1)
	return &gormModels.Availability{ID: "new", UserID: userID, StartDate: in.StartDate, EndDate: in.EndDate, Status: in.Status}, nil
}
func (m *mockAvailabilityStore) Update(ctx context.Context, id string, patch dtos.AvailabilityPatch) (*gormModels.Availability, error) {
	return &gormModels.Availability{ID: id}, nil
}
func (m *mockAvailabilityStore) Delete(ctx context.Context, id string) (string, error) {
	return id, nil
}
