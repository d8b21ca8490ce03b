package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingUser is a registration waiting on email verification. At most
// one row exists per email; a repeat registration replaces it.
type PendingUser struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FirstName string    `gorm:"size:100;not null" json:"first_name"`
	LastName  string    `gorm:"size:100;not null" json:"last_name"`
	Email     string    `gorm:"size:255;not null;unique" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      string    `gorm:"size:20;not null" json:"role"`

	VerificationCode string    `gorm:"size:10;not null" json:"-"`
	CodeExpiresAt    time.Time `gorm:"not null" json:"-"`

	// Pre-assigned mentor approval status, decided at registration
	// time by the mentor-verification feature flag.
	MentorStatus *string `gorm:"size:20" json:"mentor_status"`

	// Absolute lifetime of the registration attempt, swept by a cron
	// job regardless of code state.
	ExpiresAt time.Time `gorm:"not null;index" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (p *PendingUser) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
