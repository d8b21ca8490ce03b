package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetCode is a short-lived 4-digit OTP. One live row per
// email; a new reset request deletes the previous one.
type PasswordResetCode struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Email     string    `gorm:"size:255;not null;index"`
	Code      string    `gorm:"size:10;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	Attempts  int       `gorm:"not null;default:0"`
	Verified  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (p *PasswordResetCode) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
