package gorm

import (
	"skywatch/crewdeck/internal/constants"
	"time"
)

type Mission struct {
	ID          string                  `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Title       string                  `gorm:"column:title;not null" json:"title"`
	Description *string                 `gorm:"column:description" json:"description"`
	MissionDate string                  `gorm:"column:mission_date;type:varchar(10);index;not null" json:"mission_date"`
	Location    *string                 `gorm:"column:location" json:"location"`
	Status      constants.MissionStatus `gorm:"column:status;type:varchar(16);not null;default:planned" json:"status"`
	ChiefID     *string                 `gorm:"column:chief_id;type:uuid" json:"chief_id"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Chief *Profile `gorm:"foreignKey:ChiefID;constraint:OnDelete:SET NULL" json:"chief,omitempty"`
}

// TableName specifies the table name for GORM
func (Mission) TableName() string {
	return "missions"
}
