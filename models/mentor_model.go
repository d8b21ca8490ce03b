package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MentorProfile extends a mentor User with marketplace fields and the
// wallet cache. The balance columns are a materialized view over
// succeeded payments and payout requests; services recompute them on
// read and never treat them as authoritative.
type MentorProfile struct {
	UserID   uuid.UUID `gorm:"primary_key" json:"user_id"`
	Headline *string   `gorm:"size:255" json:"headline"`
	Bio      *string   `gorm:"type:text" json:"bio"`

	AvailableBalance float64 `gorm:"type:numeric(10,2);default:0.00" json:"available_balance"`
	TotalWithdrawn   float64 `gorm:"type:numeric(10,2);default:0.00" json:"total_withdrawn"`
	PendingEarnings  float64 `gorm:"type:numeric(10,2);default:0.00" json:"pending_earnings"`

	PayoutMethods []PayoutMethod `gorm:"foreignkey:MentorID" json:"payout_methods,omitempty"`
	User          User           `gorm:"foreignkey:UserID" json:"user"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type PayoutMethod struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MentorID      uuid.UUID `gorm:"not null;index" json:"mentor_id"`
	Type          string    `gorm:"size:30;not null" json:"type"`
	BankName      string    `gorm:"size:100;not null" json:"bank_name"`
	Country       string    `gorm:"size:100;not null" json:"country"`
	AccountNumber string    `gorm:"size:50;not null" json:"account_number"`
	AccountTitle  string    `gorm:"size:100;not null" json:"account_title"`
	IsDefault     bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (m *PayoutMethod) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
