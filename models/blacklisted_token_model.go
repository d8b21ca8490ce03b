package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlacklistedToken is a revoked session token. Rows are swept by cron
// once ExpiresAt passes, at which point the token is stale anyway.
type BlacklistedToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Token     string    `gorm:"type:text;not null;uniqueIndex:idx_blacklisted_token"`
	UserID    uuid.UUID `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func (b *BlacklistedToken) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
