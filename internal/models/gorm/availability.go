package gorm

import (
	"skywatch/crewdeck/internal/constants"
	"time"
)

// Availability is one inclusive date range for a user. Dates are YYYY-MM-DD.
type Availability struct {
	ID        string                       `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	UserID    string                       `gorm:"column:user_id;type:uuid;index;not null" json:"user_id"`
	StartDate string                       `gorm:"column:start_date;type:varchar(10);index;not null" json:"start_date"`
	EndDate   string                       `gorm:"column:end_date;type:varchar(10);index;not null" json:"end_date"`
	Status    constants.AvailabilityStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	Notes     *string                      `gorm:"column:notes" json:"notes"`
	CreatedAt time.Time                    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                    `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	User *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName specifies the table name for GORM
func (Availability) TableName() string {
	return "availabilities"
}
