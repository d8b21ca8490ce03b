package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is the earnings ledger. A succeeded payment accrues its full
// amount to the mentor; the platform fee is taken at withdrawal time.
type Payment struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	BookingID     *uuid.UUID `gorm:"unique" json:"booking_id"`
	MentorID      uuid.UUID  `gorm:"not null;index" json:"mentor_id"`
	MenteeID      uuid.UUID  `gorm:"not null" json:"mentee_id"`
	Amount        float64    `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency      string     `gorm:"size:3" json:"currency"`
	Provider      string     `gorm:"size:50;not null" json:"provider"`
	ProviderTxnID *string    `gorm:"size:255;unique" json:"provider_txn_id"`

	// pending | succeeded | failed | refunded
	Status string `gorm:"size:20;not null" json:"status"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"booking,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
