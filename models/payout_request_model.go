package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PayoutRequest is one withdrawal attempt. Amount is the gross figure
// deducted from the wallet at request time; NetAmount is what gets
// disbursed after the platform fee.
type PayoutRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MentorID    uuid.UUID `gorm:"not null;index" json:"mentor_id"`
	Amount      float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	PlatformFee float64   `gorm:"type:numeric(10,2);not null" json:"platform_fee"`
	NetAmount   float64   `gorm:"type:numeric(10,2);not null" json:"net_amount"`

	// pending | processing | completed | rejected
	Status string `gorm:"size:20;not null;default:'pending'" json:"status"`

	// Copy of the chosen payout method at request time, so later edits
	// to the method never alter history.
	MethodSnapshot datatypes.JSON `json:"method_snapshot"`

	ReceiptURL  *string    `gorm:"size:255" json:"receipt_url"`
	AdminNotes  *string    `gorm:"type:text" json:"admin_notes"`
	RequestedAt time.Time  `gorm:"not null" json:"requested_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	ProcessedBy *uuid.UUID `json:"processed_by"`

	Mentor User `gorm:"foreignkey:MentorID" json:"mentor,omitempty"`
}

func (p *PayoutRequest) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PayoutMethodSnapshot is the JSON shape stored in MethodSnapshot.
type PayoutMethodSnapshot struct {
	Type          string `json:"type"`
	BankName      string `json:"bank_name"`
	Country       string `json:"country"`
	AccountNumber string `json:"account_number"`
	AccountTitle  string `json:"account_title"`
}
