package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries a uuid primary key generated client-side, so the same
// models work on postgres, mysql and sqlite.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// All returns every persisted model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Company{},
		&User{},
		&RefreshToken{},
		&Job{},
		&Application{},
		&EmailTask{},
	}
}
