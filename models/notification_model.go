package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID `gorm:"not null;index" json:"user_id"`
	Type       string    `gorm:"size:50;not null" json:"type"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	Priority   string    `gorm:"size:20;not null;default:'normal'" json:"priority"`
	ActionURL  *string   `gorm:"size:255" json:"action_url"`
	ActionText *string   `gorm:"size:100" json:"action_text"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
