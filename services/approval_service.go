package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SetMentorStatus records an admin approval decision. Admins may flip
// a decision later; only the latest reason is kept.
func SetMentorStatus(mentorID uuid.UUID, status string) (*models.User, error) {
	if status != "approved" && status != "rejected" {
		return nil, ErrInvalidStatus
	}

	var user models.User
	err := database.DB.Where("id = ? AND role = ?", mentorID, "mentor").First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	user.MentorStatus = &status
	if err := database.DB.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SetLoginPause toggles the pause flag. Pausing also blacklists the
// mentor's current session token so the lockout is immediate instead
// of waiting for the token to expire.
func SetLoginPause(mentorID uuid.UUID, paused bool) (*models.User, error) {
	var user models.User
	err := database.DB.Where("id = ? AND role = ?", mentorID, "mentor").First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	user.LoginPaused = paused
	if err := database.DB.Save(&user).Error; err != nil {
		return nil, err
	}

	if paused && user.CurrentSessionToken != nil {
		if err := BlacklistToken(*user.CurrentSessionToken, user.ID, TokenExpiry(*user.CurrentSessionToken)); err != nil {
			return nil, err
		}
	}

	return &user, nil
}

// CheckLoginAdmission runs the login gate checks in order, each one
// short-circuiting with its own error.
func CheckLoginAdmission(user *models.User, password string) error {
	if !user.IsActive {
		return ErrAccountDeactivated
	}
	if !user.IsVerified {
		return ErrNotVerified
	}
	if user.Role != nil && *user.Role == "mentor" && user.MentorStatus != nil {
		switch *user.MentorStatus {
		case "pending":
			return ErrApprovalPending
		case "rejected":
			return ErrApprovalRejected
		}
	}
	if user.LoginPaused {
		return ErrLoginPaused
	}
	if user.Password == nil {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
