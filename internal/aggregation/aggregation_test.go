package aggregation

import (
	"testing"
	"time"

	"skywatch/crewdeck/internal/constants"
	gormModels "skywatch/crewdeck/internal/models/gorm"
)

func TestAvailabilityPercentage(t *testing.T) {
	cases := []struct {
		available, total, want int
	}{
		{0, 0, 0},
		{3, 0, 0},
		{2, 5, 40},
		{1, 3, 33},
		{2, 3, 67},
		{4, 4, 100},
	}
	for _, tc := range cases {
		if got := AvailabilityPercentage(tc.available, tc.total); got != tc.want {
			t.Errorf("AvailabilityPercentage(%d, %d) = %d, want %d", tc.available, tc.total, got, tc.want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	existing := []gormModels.Availability{{ID: "a1", StartDate: "2025-06-01", EndDate: "2025-06-10"}}

	cases := []struct {
		start, end string
		want       bool
	}{
		{"2025-06-05", "2025-06-07", true},
		{"2025-06-11", "2025-06-15", false},
		{"2025-06-10", "2025-06-12", true},
		{"2025-05-25", "2025-06-01", true},
		{"2025-05-01", "2025-05-31", false},
	}
	for _, tc := range cases {
		if got := Overlaps(existing, tc.start, tc.end, ""); got != tc.want {
			t.Errorf("Overlaps(%s, %s) = %v, want %v", tc.start, tc.end, got, tc.want)
		}
	}

	if Overlaps(existing, "2025-06-05", "2025-06-07", "a1") {
		t.Error("Expected the edited range itself to be excluded")
	}
}

func TestBuildTeamAvailability_PerDayCounts(t *testing.T) {
	month, _ := ParseMonth("2025-06")
	rows := []gormModels.Availability{
		{ID: "a1", UserID: "u1", StartDate: "2025-06-01", EndDate: "2025-06-05", Status: constants.AvailabilityAvailable},
		{ID: "a2", UserID: "u2", StartDate: "2025-06-03", EndDate: "2025-06-08", Status: constants.AvailabilityAvailable},
		{ID: "a3", UserID: "u3", StartDate: "2025-06-01", EndDate: "2025-06-30", Status: constants.AvailabilityUnavailable},
	}

	got := BuildTeamAvailability(month, rows, 4)

	if len(got.AvailabilityByDay) != 30 {
		t.Fatalf("Expected 30 days in June, got %d", len(got.AvailabilityByDay))
	}
	june4 := got.AvailabilityByDay["2025-06-04"]
	if june4.AvailableCount != 2 || june4.Percentage != 50 || june4.TotalCount != 4 {
		t.Errorf("Unexpected June 4 %+v", june4)
	}
	if d := got.AvailabilityByDay["2025-06-01"]; d.AvailableCount != 1 || d.Percentage != 25 {
		t.Errorf("Unexpected June 1 %+v", d)
	}
	if d := got.AvailabilityByDay["2025-06-09"]; d.AvailableCount != 0 || len(d.AvailableUsers) != 0 {
		t.Errorf("Unexpected June 9 %+v", d)
	}
}

func TestBuildTeamAvailability_DeduplicatesUsers(t *testing.T) {
	month, _ := ParseMonth("2025-06")
	name := "Ana"
	rows := []gormModels.Availability{
		{ID: "a1", UserID: "u1", StartDate: "2025-06-01", EndDate: "2025-06-05", Status: constants.AvailabilityAvailable,
			User: &gormModels.Profile{ID: "u1", Email: "ana@example.com", FullName: &name, Role: constants.RoleChief}},
		{ID: "a2", UserID: "u1", StartDate: "2025-06-04", EndDate: "2025-06-06", Status: constants.AvailabilityAvailable},
	}

	day := BuildTeamAvailability(month, rows, 2).AvailabilityByDay["2025-06-04"]
	if day.AvailableCount != 1 {
		t.Fatalf("Expected one user, got %d", day.AvailableCount)
	}
	if u := day.AvailableUsers[0]; u.Email != "ana@example.com" || u.Role != constants.RoleChief {
		t.Errorf("Expected profile fields from the preloaded user, got %+v", u)
	}
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(time.Date(2024, 2, 17, 12, 0, 0, 0, time.UTC))
	if first != "2024-02-01" || last != "2024-02-29" {
		t.Errorf("Expected leap February bounds, got %s..%s", first, last)
	}
	if _, err := ParseMonth("2024-13"); err == nil {
		t.Error("Expected invalid month to fail")
	}
}

func TestFlightHours(t *testing.T) {
	if got := FlightHours(45, 50); got != 1.6 {
		t.Errorf("Expected 1.6, got %v", got)
	}
	if got := FlightHours(); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
	if got := FlightHours(90); got != 1.5 {
		t.Errorf("Expected 1.5, got %v", got)
	}
}
