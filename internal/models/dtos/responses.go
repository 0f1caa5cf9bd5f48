package dtos

import (
	"skywatch/crewdeck/internal/constants"
	gormModels "skywatch/crewdeck/internal/models/gorm"
)

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Code         string `json:"code,omitempty"`
	Data         any    `json:"data,omitempty"`
}

// TeamStats backs the dashboard counters
type TeamStats struct {
	TotalMembers      int     `json:"total_members"`
	AvailableToday    int     `json:"available_today"`
	MissionsThisMonth int     `json:"missions_this_month"`
	ActiveMissions    int     `json:"active_missions"`
	TotalFlightHours  float64 `json:"total_flight_hours"`
}

// TrainingWithStatus joins the catalogue with one user's certifications
type TrainingWithStatus struct {
	gormModels.Training
	Completed     bool                     `json:"completed"`
	Certification *gormModels.UserTraining `json:"certification,omitempty"`
}

// GuidelineGroup is one category bucket of GroupByCategory
type GuidelineGroup struct {
	Category   constants.GuidelineCategory  `json:"category"`
	Guidelines []gormModels.SafetyGuideline `json:"guidelines"`
}

// UploadResult is returned by every file upload
type UploadResult struct {
	Path      string `json:"path"`
	PublicURL string `json:"public_url"`
}
