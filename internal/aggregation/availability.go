package aggregation

import (
	"fmt"
	"math"
	"time"

	"skywatch/crewdeck/internal/constants"
	gormModels "skywatch/crewdeck/internal/models/gorm"
)

// Member is the public slice of a profile shown on the team calendar
type Member struct {
	ID        string         `json:"id"`
	FullName  *string        `json:"full_name"`
	Email     string         `json:"email"`
	AvatarURL *string        `json:"avatar_url"`
	Role      constants.Role `json:"role"`
}

type DayAvailability struct {
	Date           string   `json:"date"`
	AvailableCount int      `json:"available_count"`
	TotalCount     int      `json:"total_count"`
	Percentage     int      `json:"percentage"`
	AvailableUsers []Member `json:"available_users"`
}

type TeamAvailability struct {
	Month             string                     `json:"month"`
	AvailabilityByDay map[string]DayAvailability `json:"availability_by_day"`
	TotalTeamCount    int                        `json:"total_team_count"`
}

// AvailabilityPercentage is round(available/total*100), 0 for an empty team
func AvailabilityPercentage(available, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(available) / float64(total) * 100))
}

// ParseMonth reads YYYY-MM into the first instant of that month, UTC
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(constants.MonthLayout, month)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: %w", month, err)
	}
	return t, nil
}

// MonthBounds returns the first and last calendar day of t's month
func MonthBounds(t time.Time) (first, last string) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start.Format(constants.DateLayout), end.Format(constants.DateLayout)
}

// MonthDays enumerates every day of t's month as YYYY-MM-DD
func MonthDays(t time.Time) []string {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	var days []string
	for d := start; d.Month() == start.Month(); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(constants.DateLayout))
	}
	return days
}

// BuildTeamAvailability folds availability rows into per-day counts for the
// month. Only rows with status available count, each user once per day.
func BuildTeamAvailability(month time.Time, rows []gormModels.Availability, totalMembers int) TeamAvailability {
	out := TeamAvailability{
		Month:             month.Format(constants.MonthLayout),
		AvailabilityByDay: make(map[string]DayAvailability),
		TotalTeamCount:    totalMembers,
	}

	for _, day := range MonthDays(month) {
		seen := make(map[string]bool)
		users := []Member{}
		for _, r := range rows {
			if r.Status != constants.AvailabilityAvailable {
				continue
			}
			if day < r.StartDate || day > r.EndDate || seen[r.UserID] {
				continue
			}
			seen[r.UserID] = true
			users = append(users, memberOf(r))
		}
		out.AvailabilityByDay[day] = DayAvailability{
			Date:           day,
			AvailableCount: len(users),
			TotalCount:     totalMembers,
			Percentage:     AvailabilityPercentage(len(users), totalMembers),
			AvailableUsers: users,
		}
	}
	return out
}

func memberOf(r gormModels.Availability) Member {
	if r.User == nil {
		return Member{ID: r.UserID}
	}
	return Member{
		ID:        r.User.ID,
		FullName:  r.User.FullName,
		Email:     r.User.Email,
		AvatarURL: r.User.AvatarURL,
		Role:      r.User.Role,
	}
}

// Overlaps reports whether [start, end] intersects any range other than
// excludeID. Both ends are inclusive.
func Overlaps(ranges []gormModels.Availability, start, end, excludeID string) bool {
	for _, r := range ranges {
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if start <= r.EndDate && end >= r.StartDate {
			return true
		}
	}
	return false
}
