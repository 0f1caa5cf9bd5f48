package gorm

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ensureID fills an empty primary key. Postgres would default it but the
// sqlite test store has no gen_random_uuid.
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}

// AllModels lists every table for AutoMigrate, parents first
func AllModels() []interface{} {
	return []interface{}{
		&Profile{},
		&Availability{},
		&Mission{},
		&Flight{},
		&Training{},
		&UserTraining{},
		&SafetyGuideline{},
	}
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error         { ensureID(&p.ID); return nil }
func (a *Availability) BeforeCreate(tx *gorm.DB) error    { ensureID(&a.ID); return nil }
func (m *Mission) BeforeCreate(tx *gorm.DB) error         { ensureID(&m.ID); return nil }
func (f *Flight) BeforeCreate(tx *gorm.DB) error          { ensureID(&f.ID); return nil }
func (t *Training) BeforeCreate(tx *gorm.DB) error        { ensureID(&t.ID); return nil }
func (u *UserTraining) BeforeCreate(tx *gorm.DB) error    { ensureID(&u.ID); return nil }
func (g *SafetyGuideline) BeforeCreate(tx *gorm.DB) error { ensureID(&g.ID); return nil }
