package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FirstName    string    `gorm:"size:100;not null" json:"first_name"`
	LastName     string    `gorm:"size:100;not null" json:"last_name"`
	Email        string    `gorm:"size:255;not null;unique" json:"email"`
	Password     *string   `gorm:"size:255" json:"-"`
	AuthProvider string    `gorm:"size:20;not null;default:'local'" json:"auth_provider"`
	Role         *string   `gorm:"size:20" json:"role"`

	IsActive   bool `gorm:"default:true" json:"is_active"`
	IsVerified bool `gorm:"default:false" json:"is_verified"`

	// pending | approved | rejected. NULL on mentor accounts that
	// predate mentor verification, treated as approved.
	MentorStatus *string `gorm:"size:20" json:"mentor_status"`
	LoginPaused  bool    `gorm:"default:false" json:"login_paused"`

	ProfilePictureURL *string `gorm:"size:255" json:"profile_picture_url"`
	Phone             *string `gorm:"size:30" json:"phone"`
	Country           *string `gorm:"size:100" json:"country"`
	TimeZone          *string `gorm:"size:100" json:"time_zone"`

	// Legacy accounts created before pending_users existed carry their
	// registration code inline.
	VerificationCode          *string    `gorm:"size:10" json:"-"`
	VerificationCodeExpiresAt *time.Time `json:"-"`

	// Most recent token issued at login, so a forced pause can
	// blacklist it immediately.
	CurrentSessionToken *string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
