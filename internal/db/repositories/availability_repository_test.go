package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
	"skywatch/crewdeck/internal/realtime"
)

func TestAvailabilityRepository_RejectsOverlaps(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "u1", constants.RolePilot)
	changes := &recordingChanges{}
	repo := NewAvailabilityRepository(db, changes)
	ctx := as("u1", constants.RolePilot)

	first, err := repo.Create(ctx, "u1", dtos.AvailabilityInput{StartDate: "2025-06-01", EndDate: "2025-06-10"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if first.Status != constants.AvailabilityAvailable {
		t.Errorf("Expected default status, got %q", first.Status)
	}

	cases := []struct {
		start, end string
		overlap    bool
	}{
		{"2025-06-05", "2025-06-07", true},
		{"2025-06-10", "2025-06-12", true},
		{"2025-06-11", "2025-06-15", false},
	}
	for _, tc := range cases {
		_, err := repo.Create(ctx, "u1", dtos.AvailabilityInput{StartDate: tc.start, EndDate: tc.end})
		if tc.overlap && !errors.Is(err, apperrors.ErrAvailabilityOverlap) {
			t.Errorf("%s..%s: expected overlap error, got %v", tc.start, tc.end, err)
		}
		if !tc.overlap && err != nil {
			t.Errorf("%s..%s: expected success, got %v", tc.start, tc.end, err)
		}
	}

	got := changes.all()
	if len(got) != 2 || got[0].Type != realtime.EventInsert || got[0].New["user_id"] != "u1" {
		t.Errorf("Expected two insert changes, got %+v", got)
	}
}

func TestAvailabilityRepository_UpdateExcludesItself(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "u1", constants.RolePilot)
	repo := NewAvailabilityRepository(db, nil)
	ctx := as("u1", constants.RolePilot)

	row, err := repo.Create(ctx, "u1", dtos.AvailabilityInput{StartDate: "2025-06-01", EndDate: "2025-06-10"})
	if err != nil {
		t.Fatalf("Failed to create: %v", err)
	}

	end := "2025-06-12"
	updated, err := repo.Update(ctx, row.ID, dtos.AvailabilityPatch{EndDate: &end})
	if err != nil {
		t.Fatalf("Expected extending a range over itself to pass, got %v", err)
	}
	if updated.EndDate != end {
		t.Errorf("Expected end %s, got %s", end, updated.EndDate)
	}

	start := "2025-06-20"
	if _, err := repo.Update(ctx, row.ID, dtos.AvailabilityPatch{StartDate: &start}); !errors.Is(err, apperrors.ErrInvalidDateRange) {
		t.Errorf("Expected INVALID_DATE_RANGE, got %v", err)
	}
}

func TestAvailabilityRepository_OwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "u1", constants.RolePilot)
	seedProfile(t, db, "u2", constants.RolePilot)
	repo := NewAvailabilityRepository(db, nil)

	if _, err := repo.Create(as("u2", constants.RolePilot), "u1", dtos.AvailabilityInput{StartDate: "2025-06-01", EndDate: "2025-06-02"}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("Expected PERMISSION_DENIED creating for another user, got %v", err)
	}

	row, err := repo.Create(as("u1", constants.RolePilot), "u1", dtos.AvailabilityInput{StartDate: "2025-06-01", EndDate: "2025-06-02"})
	if err != nil {
		t.Fatalf("Failed to create: %v", err)
	}
	if _, err := repo.Delete(as("u2", constants.RolePilot), row.ID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("Expected PERMISSION_DENIED deleting another user's range, got %v", err)
	}
	if _, err := repo.Delete(context.Background(), row.ID); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("Expected UNAUTHENTICATED without claims, got %v", err)
	}
	if _, err := repo.Delete(as("u1", constants.RolePilot), "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}
}

func TestAvailabilityRepository_ListAvailableInRange(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "u1", constants.RolePilot)
	seedProfile(t, db, "u2", constants.RolePilot)
	repo := NewAvailabilityRepository(db, nil)

	mustCreate := func(user, start, end string, status constants.AvailabilityStatus) {
		t.Helper()
		if _, err := repo.Create(as(user, constants.RolePilot), user, dtos.AvailabilityInput{StartDate: start, EndDate: end, Status: status}); err != nil {
			t.Fatalf("Failed to create: %v", err)
		}
	}
	mustCreate("u1", "2025-05-28", "2025-06-02", constants.AvailabilityAvailable)
	mustCreate("u1", "2025-07-01", "2025-07-03", constants.AvailabilityAvailable)
	mustCreate("u2", "2025-06-10", "2025-06-12", constants.AvailabilityTentative)

	rows, err := repo.ListAvailableInRange(context.Background(), "2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(rows) != 1 || rows[0].UserID != "u1" || rows[0].User == nil {
		t.Fatalf("Expected only u1's range straddling the month start, got %+v", rows)
	}
}

func TestOwnerLockQuery_LocksProfileRowOnPostgres(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=crewdeck dbname=crewdeck sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("Failed to open dry-run database: %v", err)
	}

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB { return ownerLockQuery(tx, "u1") })
	if !strings.Contains(sql, `FROM "profiles"`) || !strings.HasSuffix(strings.TrimSpace(sql), "FOR UPDATE") {
		t.Errorf("Expected a FOR UPDATE lock on the profile row, got %q", sql)
	}
}

func TestAvailabilityRepository_CreateRequiresOwnerProfile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAvailabilityRepository(db, nil)

	_, err := repo.Create(as("ghost", constants.RolePilot), "ghost", dtos.AvailabilityInput{StartDate: "2025-06-01", EndDate: "2025-06-02"})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected NOT_FOUND without an owner profile, got %v", err)
	}
}
