package models

import (
	"time"

	"gorm.io/datatypes"
)

// EmailTask records the outcome of one queued notification.
type EmailTask struct {
	BaseModel
	Kind          EmailKind       `gorm:"type:varchar(40);not null;index"`
	ApplicationID string          `gorm:"size:36;not null;index"`
	Payload       datatypes.JSON  `gorm:"not null"`
	Status        EmailTaskStatus `gorm:"type:varchar(10);not null;index"`
	Attempts      int             `gorm:"not null"`
	LastError     string          `gorm:"type:text"`
	CompletedAt   *time.Time
}
