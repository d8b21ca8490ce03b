package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
	"gorm.io/gorm"
)

const sessionTokenTTL = 72 * time.Hour

// BlacklistToken revokes a session token until its natural expiry.
// Re-blacklisting the same token is not an error; the unique index on
// the token column makes concurrent revocations collapse to one row.
// Requires TranslateError on the connection so the driver's duplicate
// error surfaces as gorm.ErrDuplicatedKey.
func BlacklistToken(token string, userID uuid.UUID, expiresAt time.Time) error {
	record := models.BlacklistedToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	err := database.DB.Create(&record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}

func IsTokenBlacklisted(token string) (bool, error) {
	var count int64
	err := database.DB.Model(&models.BlacklistedToken{}).Where("token = ?", token).Count(&count).Error
	return count > 0, err
}

// TokenExpiry reads the exp claim without re-validating the signature;
// the caller already holds a token it trusts enough to revoke. Falls
// back to the full session TTL when the claim is unreadable.
func TokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err == nil {
		if claims, ok := parsed.Claims.(jwt.MapClaims); ok {
			if exp, ok := claims["exp"].(float64); ok {
				return time.Unix(int64(exp), 0)
			}
		}
	}
	return time.Now().Add(sessionTokenTTL)
}
