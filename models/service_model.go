package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MentorID        uuid.UUID `gorm:"not null;index" json:"mentor_id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     *string   `gorm:"type:text" json:"description"`
	Price           float64   `gorm:"type:numeric(10,2);not null" json:"price"`
	Currency        string    `gorm:"size:3;not null;default:'USD'" json:"currency"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`

	Mentor User `gorm:"foreignkey:MentorID" json:"mentor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
