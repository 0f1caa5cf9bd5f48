package gorm

import (
	"skywatch/crewdeck/internal/constants"
	"time"
)

type SafetyGuideline struct {
	ID          string                      `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Title       string                      `gorm:"column:title;not null" json:"title"`
	Content     string                      `gorm:"column:content;type:text;not null" json:"content"`
	Category    constants.GuidelineCategory `gorm:"column:category;type:varchar(32);not null;default:general" json:"category"`
	Priority    constants.GuidelinePriority `gorm:"column:priority;type:varchar(16);not null;default:medium" json:"priority"`
	DocumentURL *string                     `gorm:"column:document_url" json:"document_url"`
	CreatedBy   *string                     `gorm:"column:created_by;type:uuid" json:"created_by"`
	CreatedAt   time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (SafetyGuideline) TableName() string {
	return "safety_guidelines"
}
