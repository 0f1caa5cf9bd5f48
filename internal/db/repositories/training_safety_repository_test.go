package repositories

import (
	"context"
	"errors"
	"testing"

	"skywatch/crewdeck/internal/apperrors"
	"skywatch/crewdeck/internal/constants"
	"skywatch/crewdeck/internal/models/dtos"
	"skywatch/crewdeck/internal/realtime"
)

func TestTrainingRepository_PilotCreateIsRejected(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "pilot", constants.RolePilot)
	changes := &recordingChanges{}
	repo := NewTrainingRepository(db, changes)

	_, err := repo.Create(as("pilot", constants.RolePilot), dtos.TrainingInput{Title: "Night ops"})
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("Expected PERMISSION_DENIED, got %v", err)
	}
	if apperrors.CodeOf(err) != constants.ErrCodePermissionDenied {
		t.Errorf("Expected the typed code, got %q", apperrors.CodeOf(err))
	}
	if len(changes.all()) != 0 {
		t.Error("Expected no change published for a rejected write")
	}
	if list, _ := repo.List(context.Background()); len(list) != 0 {
		t.Errorf("Expected nothing stored, got %d rows", len(list))
	}
}

func TestTrainingRepository_Certifications(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "chief", constants.RoleChief)
	seedProfile(t, db, "p1", constants.RolePilot)
	repo := NewTrainingRepository(db, nil)
	chief := as("chief", constants.RoleChief)

	a, _ := repo.Create(chief, dtos.TrainingInput{Title: "Thermal camera", IsRequired: true})
	b, _ := repo.Create(chief, dtos.TrainingInput{Title: "Basic flight"})

	if _, err := repo.AddCertification(chief, dtos.CertificationInput{UserID: "p1", TrainingID: a.ID, CompletedAt: "2025-03-01"}); err != nil {
		t.Fatalf("Failed to add certification: %v", err)
	}
	cert, err := repo.AddCertification(chief, dtos.CertificationInput{UserID: "p1", TrainingID: b.ID, CompletedAt: "2025-05-01"})
	if err != nil {
		t.Fatalf("Failed to add certification: %v", err)
	}
	if cert.ValidatedBy == nil || *cert.ValidatedBy != "chief" || cert.Training == nil {
		t.Errorf("Expected validator and training set, got %+v", cert)
	}

	if _, err := repo.AddCertification(as("p1", constants.RolePilot), dtos.CertificationInput{UserID: "p1", TrainingID: a.ID, CompletedAt: "2025-03-01"}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("Expected pilots unable to self-certify, got %v", err)
	}

	certs, err := repo.ListCertifications(context.Background(), "p1")
	if err != nil || len(certs) != 2 || certs[0].TrainingID != b.ID {
		t.Fatalf("Expected two certifications most recent first, got %+v, %v", certs, err)
	}

	catalogue, _ := repo.List(context.Background())
	if len(catalogue) != 2 || catalogue[0].Title != "Basic flight" {
		t.Errorf("Expected catalogue by title, got %+v", catalogue)
	}

	if _, err := repo.Delete(chief, a.ID); err != nil {
		t.Fatalf("Failed to delete training: %v", err)
	}
	if certs, _ := repo.ListCertifications(context.Background(), "p1"); len(certs) != 1 {
		t.Errorf("Expected certifications of the deleted training removed, got %d", len(certs))
	}
}

func TestSafetyGuidelineRepository_OrderingAndSearch(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "chief", constants.RoleChief)
	repo := NewSafetyGuidelineRepository(db, nil)
	chief := as("chief", constants.RoleChief)

	for _, in := range []dtos.GuidelineInput{
		{Title: "Weather limits", Content: "No flight above 40 km/h wind", Priority: constants.PriorityHigh, Category: constants.CategoryPreFlight},
		{Title: "Battery fire", Content: "Use sand", Priority: constants.PriorityCritical, Category: constants.CategoryEmergency},
		{Title: "Logbook", Content: "Fill after every flight", Priority: constants.PriorityLow},
		{Title: "Airspace", Content: "Check NOTAMs", Priority: constants.PriorityHigh, Category: constants.CategoryPreFlight},
	} {
		if _, err := repo.Create(chief, in); err != nil {
			t.Fatalf("Failed to create: %v", err)
		}
	}

	all, err := repo.List(context.Background(), dtos.GuidelineFilters{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := []string{"Battery fire", "Airspace", "Weather limits", "Logbook"}
	for i, g := range all {
		if g.Title != want[i] {
			t.Fatalf("Expected %v, got order at %d: %s", want, i, g.Title)
		}
	}

	found, _ := repo.List(context.Background(), dtos.GuidelineFilters{Search: "FLIGHT"})
	if len(found) != 2 || found[0].Title != "Weather limits" {
		t.Errorf("Expected case-insensitive match on content, got %+v", found)
	}

	pre, _ := repo.List(context.Background(), dtos.GuidelineFilters{Category: constants.CategoryPreFlight, Priority: constants.PriorityHigh})
	if len(pre) != 2 {
		t.Errorf("Expected two pre-flight high guidelines, got %d", len(pre))
	}

	if _, err := repo.Create(as("p1", constants.RolePilot), dtos.GuidelineInput{Title: "x", Content: "y"}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("Expected PERMISSION_DENIED for a pilot, got %v", err)
	}
}

func TestTrainingRepository_DeletePublishesCertificationChanges(t *testing.T) {
	db := setupTestDB(t)
	seedProfile(t, db, "chief", constants.RoleChief)
	seedProfile(t, db, "p1", constants.RolePilot)
	chief := as("chief", constants.RoleChief)

	feed := realtime.NewMemoryFeed()
	pub := &recordingBus{}
	manager := realtime.NewManager(feed, pub, nil)
	defer manager.Close()

	repo := NewTrainingRepository(db, feed)
	tr, _ := repo.Create(chief, dtos.TrainingInput{Title: "Night ops"})
	if _, err := repo.AddCertification(chief, dtos.CertificationInput{UserID: "p1", TrainingID: tr.ID, CompletedAt: "2025-03-01"}); err != nil {
		t.Fatalf("Failed to add certification: %v", err)
	}

	sub := manager.Subscribe(context.Background(), realtime.CertificationsForUser("p1"))
	defer sub.Close()

	if _, err := repo.Delete(chief, tr.ID); err != nil {
		t.Fatalf("Failed to delete training: %v", err)
	}
	if !pub.has("user-trainings/p1") {
		t.Errorf("Expected user-trainings/p1 invalidated by the cascade, got %v", pub.keys)
	}
}
