package dtos

import (
	"net/url"

	"skywatch/crewdeck/internal/constants"
)

// Patches use pointer fields: nil means "leave unchanged".

type ProfilePatch struct {
	FullName  *string `json:"full_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Empty reports whether the patch changes nothing
func (p ProfilePatch) Empty() bool {
	return p.FullName == nil && p.Phone == nil && p.AvatarURL == nil
}

type AvailabilityInput struct {
	StartDate string                       `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string                       `json:"end_date" validate:"required,datetime=2006-01-02"`
	Status    constants.AvailabilityStatus `json:"status" validate:"oneof=available unavailable tentative"`
	Notes     *string                      `json:"notes,omitempty"`
}

type AvailabilityPatch struct {
	StartDate *string                       `json:"start_date,omitempty"`
	EndDate   *string                       `json:"end_date,omitempty"`
	Status    *constants.AvailabilityStatus `json:"status,omitempty"`
	Notes     *string                       `json:"notes,omitempty"`
}

type MissionInput struct {
	Title       string                  `json:"title" validate:"notblank,max=200"`
	Description *string                 `json:"description,omitempty"`
	MissionDate string                  `json:"mission_date" validate:"required,datetime=2006-01-02"`
	Location    *string                 `json:"location,omitempty" validate:"omitempty,max=200"`
	Status      constants.MissionStatus `json:"status,omitempty" validate:"oneof=planned in_progress completed cancelled"`
}

type MissionPatch struct {
	Title       *string                  `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description *string                  `json:"description,omitempty"`
	MissionDate *string                  `json:"mission_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Location    *string                  `json:"location,omitempty" validate:"omitempty,max=200"`
	Status      *constants.MissionStatus `json:"status,omitempty" validate:"omitempty,oneof=planned in_progress completed cancelled"`
}

// MissionFilters narrows the mission list. Zero values are ignored.
type MissionFilters struct {
	Status constants.MissionStatus `json:"status,omitempty"`
	From   string                  `json:"from,omitempty"`
	To     string                  `json:"to,omitempty"`
}

func (f MissionFilters) Values() url.Values {
	v := url.Values{}
	setIf(v, "status", string(f.Status))
	setIf(v, "from", f.From)
	setIf(v, "to", f.To)
	return v
}

type FlightInput struct {
	MissionID       string  `json:"mission_id" validate:"required"`
	PilotID         string  `json:"pilot_id,omitempty"`
	FlightDate      string  `json:"flight_date" validate:"required,datetime=2006-01-02"`
	DurationMinutes int     `json:"duration_minutes" validate:"gt=0"`
	DroneModel      *string `json:"drone_model,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

type FlightPatch struct {
	FlightDate      *string `json:"flight_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DurationMinutes *int    `json:"duration_minutes,omitempty" validate:"omitempty,gt=0"`
	DroneModel      *string `json:"drone_model,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

type TrainingInput struct {
	Title         string   `json:"title" validate:"notblank,max=200"`
	Description   *string  `json:"description,omitempty"`
	DurationHours *float64 `json:"duration_hours,omitempty" validate:"omitempty,gte=0"`
	Category      *string  `json:"category,omitempty"`
	IsRequired    bool     `json:"is_required"`
	DocumentURL   *string  `json:"document_url,omitempty"`
}

type TrainingPatch struct {
	Title         *string  `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Description   *string  `json:"description,omitempty"`
	DurationHours *float64 `json:"duration_hours,omitempty" validate:"omitempty,gte=0"`
	Category      *string  `json:"category,omitempty"`
	IsRequired    *bool    `json:"is_required,omitempty"`
	DocumentURL   *string  `json:"document_url,omitempty"`
}

type CertificationInput struct {
	UserID         string  `json:"user_id" validate:"required"`
	TrainingID     string  `json:"training_id" validate:"required"`
	CompletedAt    string  `json:"completed_at" validate:"required,datetime=2006-01-02"`
	ExpiresAt      *string `json:"expires_at,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CertificateURL *string `json:"certificate_url,omitempty"`
}

type GuidelineInput struct {
	Title       string                      `json:"title" validate:"notblank,max=200"`
	Content     string                      `json:"content" validate:"notblank"`
	Category    constants.GuidelineCategory `json:"category"`
	Priority    constants.GuidelinePriority `json:"priority" validate:"oneof=low medium high critical"`
	DocumentURL *string                     `json:"document_url,omitempty"`
}

type GuidelinePatch struct {
	Title       *string                      `json:"title,omitempty" validate:"omitempty,notblank,max=200"`
	Content     *string                      `json:"content,omitempty" validate:"omitempty,notblank"`
	Category    *constants.GuidelineCategory `json:"category,omitempty"`
	Priority    *constants.GuidelinePriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	DocumentURL *string                      `json:"document_url,omitempty"`
}

// GuidelineFilters: Search matches title or content case-insensitively
type GuidelineFilters struct {
	Category constants.GuidelineCategory `json:"category,omitempty"`
	Priority constants.GuidelinePriority `json:"priority,omitempty"`
	Search   string                      `json:"search,omitempty"`
}

func (f GuidelineFilters) Values() url.Values {
	v := url.Values{}
	setIf(v, "category", string(f.Category))
	setIf(v, "priority", string(f.Priority))
	setIf(v, "search", f.Search)
	return v
}

func setIf(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}
