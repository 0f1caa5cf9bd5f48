package gorm

import (
	"skywatch/crewdeck/internal/constants"
	"time"
)

type Profile struct {
	ID        string         `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Email     string         `gorm:"column:email;uniqueIndex;not null" json:"email"`
	FullName  *string        `gorm:"column:full_name" json:"full_name"`
	Phone     *string        `gorm:"column:phone" json:"phone"`
	Role      constants.Role `gorm:"column:role;type:varchar(16);not null;default:pilot" json:"role"`
	AvatarURL *string        `gorm:"column:avatar_url" json:"avatar_url"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}
