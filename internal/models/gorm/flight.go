package gorm

import "time"

type Flight struct {
	ID              string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	MissionID       string    `gorm:"column:mission_id;type:uuid;index;not null" json:"mission_id"`
	PilotID         string    `gorm:"column:pilot_id;type:uuid;index;not null" json:"pilot_id"`
	FlightDate      string    `gorm:"column:flight_date;type:varchar(10);index;not null" json:"flight_date"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	DroneModel      *string   `gorm:"column:drone_model" json:"drone_model"`
	Notes           *string   `gorm:"column:notes" json:"notes"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Mission *Mission `gorm:"foreignKey:MissionID;constraint:OnDelete:CASCADE" json:"mission,omitempty"`
	Pilot   *Profile `gorm:"foreignKey:PilotID" json:"pilot,omitempty"`
}

// TableName specifies the table name for GORM
func (Flight) TableName() string {
	return "flights"
}
