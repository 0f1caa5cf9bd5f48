package repositories

import (
	"context"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"skywatch/crewdeck/internal/auth"
	"skywatch/crewdeck/internal/bus"
	"skywatch/crewdeck/internal/constants"
	gormModels "skywatch/crewdeck/internal/models/gorm"
	"skywatch/crewdeck/internal/realtime"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// every pooled connection to :memory: would be a new empty database
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

type recordingChanges struct {
	mu      sync.Mutex
	changes []realtime.Change
}

func (r *recordingChanges) Publish(ctx context.Context, c realtime.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return nil
}

func (r *recordingChanges) all() []realtime.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]realtime.Change(nil), r.changes...)
}

// recordingBus collects the invalidation keys a realtime manager publishes
type recordingBus struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingBus) Publish(ctx context.Context, ev bus.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, ev.Key.String())
	return nil
}

func (r *recordingBus) has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range r.keys {
		if k == key {
			return true
		}
	}
	return false
}

func seedProfile(t *testing.T, db *gorm.DB, id string, role constants.Role) gormModels.Profile {
	t.Helper()
	p := gormModels.Profile{ID: id, Email: id + "@example.com", Role: role}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("Failed to seed profile: %v", err)
	}
	return p
}

func as(id string, role constants.Role) context.Context {
	return auth.SetUserClaims(context.Background(), &auth.JWTClaims{
		UserUUID:   id,
		EmailValue: id + "@example.com",
		RoleValue:  role,
	})
}
