package gorm

import "time"

// Training is an entry of the training catalogue
type Training struct {
	ID            string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	Title         string    `gorm:"column:title;not null" json:"title"`
	Description   *string   `gorm:"column:description" json:"description"`
	DurationHours *float64  `gorm:"column:duration_hours" json:"duration_hours"`
	Category      *string   `gorm:"column:category" json:"category"`
	IsRequired    bool      `gorm:"column:is_required;default:false" json:"is_required"`
	DocumentURL   *string   `gorm:"column:document_url" json:"document_url"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Training) TableName() string {
	return "trainings"
}

// UserTraining is a certification: a completed training for one user
type UserTraining struct {
	ID             string    `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	UserID         string    `gorm:"column:user_id;type:uuid;index;not null" json:"user_id"`
	TrainingID     string    `gorm:"column:training_id;type:uuid;index;not null" json:"training_id"`
	CompletedAt    string    `gorm:"column:completed_at;type:varchar(10);not null" json:"completed_at"`
	ExpiresAt      *string   `gorm:"column:expires_at;type:varchar(10)" json:"expires_at"`
	CertificateURL *string   `gorm:"column:certificate_url" json:"certificate_url"`
	ValidatedBy    *string   `gorm:"column:validated_by;type:uuid" json:"validated_by"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Training *Training `gorm:"foreignKey:TrainingID;constraint:OnDelete:CASCADE" json:"training,omitempty"`
	User     *Profile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (UserTraining) TableName() string {
	return "user_trainings"
}
