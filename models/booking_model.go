package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Booking struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ServiceID   uuid.UUID `gorm:"not null" json:"service_id"`
	MenteeID    uuid.UUID `gorm:"not null" json:"mentee_id"`
	MentorID    uuid.UUID `gorm:"not null" json:"mentor_id"`
	ScheduledAt time.Time `gorm:"not null" json:"scheduled_at"`

	// pending_payment | confirmed | completed | cancelled
	Status      string  `gorm:"size:20;not null;default:'pending_payment'" json:"status"`
	Price       float64 `gorm:"type:numeric(10,2);not null" json:"price"`
	Currency    string  `gorm:"size:3" json:"currency"`
	MeetingLink *string `gorm:"size:255" json:"meeting_link"`

	Service Service `gorm:"foreignkey:ServiceID" json:"service,omitempty"`
	Mentee  User    `gorm:"foreignkey:MenteeID" json:"mentee,omitempty"`
	Mentor  User    `gorm:"foreignkey:MentorID" json:"mentor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
