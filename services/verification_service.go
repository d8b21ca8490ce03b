package services

import (
	"errors"
	"time"

	config "github.com/mentorlink/backend/configs"
	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
	"github.com/mentorlink/backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	registrationCodeLength = 6
	registrationCodeTTL    = 10 * time.Minute
	pendingUserTTL         = 24 * time.Hour

	resetCodeLength      = 4
	resetCodeTTL         = 5 * time.Minute
	resetCodeMaxAttempts = 5
)

// ResetCompletionGrace extends a verified reset code's expiry so the
// user has time to type the new password. Cleanup must not reap codes
// still inside this window.
const ResetCompletionGrace = 2 * time.Minute

type RegistrationDraft struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

// RegisterPending stages a registration behind email verification.
// Any earlier pending registration for the same address is replaced,
// so at most one attempt is outstanding per email.
func RegisterPending(draft RegistrationDraft) (*models.PendingUser, error) {
	email := utils.NormalizeEmail(draft.Email)

	var count int64
	if err := database.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(draft.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var mentorStatus *string
	if draft.Role == "mentor" {
		status := "approved"
		if config.ConfigBool("ENABLE_MENTOR_VERIFICATION", true) {
			status = "pending"
		}
		mentorStatus = &status
	}

	now := time.Now()
	pending := models.PendingUser{
		FirstName:        draft.FirstName,
		LastName:         draft.LastName,
		Email:            email,
		Password:         string(hashedPassword),
		Role:             draft.Role,
		VerificationCode: utils.GenerateOTP(registrationCodeLength),
		CodeExpiresAt:    now.Add(registrationCodeTTL),
		MentorStatus:     mentorStatus,
		ExpiresAt:        now.Add(pendingUserTTL),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.PendingUser{}).Error; err != nil {
			return err
		}
		return tx.Create(&pending).Error
	})
	if err != nil {
		return nil, err
	}

	return &pending, nil
}

// VerifyEmail promotes a pending registration into a full account. For
// accounts created before pending_users existed, it falls back to the
// inline code on the User row.
func VerifyEmail(email, code string) (*models.User, error) {
	email = utils.NormalizeEmail(email)
	now := time.Now()

	var pending models.PendingUser
	err := database.DB.
		Where("email = ? AND verification_code = ? AND code_expires_at > ?", email, code, now).
		First(&pending).Error
	if err == nil {
		var user models.User
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			role := pending.Role
			user = models.User{
				FirstName:    pending.FirstName,
				LastName:     pending.LastName,
				Email:        pending.Email,
				Password:     &pending.Password,
				Role:         &role,
				IsVerified:   true,
				MentorStatus: pending.MentorStatus,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			if pending.Role == "mentor" {
				if err := tx.Create(&models.MentorProfile{UserID: user.ID}).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&pending).Error
		})
		if err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Legacy fallback.
	var user models.User
	err = database.DB.
		Where("email = ? AND verification_code = ? AND verification_code_expires_at > ? AND is_verified = ?", email, code, now, false).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, err
	}

	user.IsVerified = true
	user.VerificationCode = nil
	user.VerificationCodeExpiresAt = nil
	if err := database.DB.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ResendCode regenerates the registration OTP. Returns the recipient
// name and the new code for the caller to hand to email delivery.
func ResendCode(email string) (string, string, error) {
	email = utils.NormalizeEmail(email)
	now := time.Now()

	var pending models.PendingUser
	err := database.DB.Where("email = ?", email).First(&pending).Error
	if err == nil {
		pending.VerificationCode = utils.GenerateOTP(registrationCodeLength)
		pending.CodeExpiresAt = now.Add(registrationCodeTTL)
		if err := database.DB.Save(&pending).Error; err != nil {
			return "", "", err
		}
		return pending.FirstName, pending.VerificationCode, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", "", err
	}

	var user models.User
	err = database.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrNotFound
		}
		return "", "", err
	}
	if user.IsVerified {
		return "", "", ErrAlreadyVerified
	}

	code := utils.GenerateOTP(registrationCodeLength)
	expiry := now.Add(registrationCodeTTL)
	user.VerificationCode = &code
	user.VerificationCodeExpiresAt = &expiry
	if err := database.DB.Save(&user).Error; err != nil {
		return "", "", err
	}
	return user.FirstName, code, nil
}

// RequestPasswordReset issues a reset OTP. An unknown email is a
// silent no-op (nil user, nil error) so callers can report success
// either way and not leak which addresses exist.
func RequestPasswordReset(email string) (*models.User, string, error) {
	email = utils.NormalizeEmail(email)

	var user models.User
	err := database.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", nil
		}
		return nil, "", err
	}
	if user.AuthProvider != "local" {
		return nil, "", ErrOAuthAccount
	}

	code := utils.GenerateOTP(resetCodeLength)
	record := models.PasswordResetCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(resetCodeTTL),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.PasswordResetCode{}).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, "", err
	}

	return &user, code, nil
}

// VerifyResetCode checks a submitted reset OTP. Every failed compare
// is persisted before the error returns, so the attempt cap holds
// across requests. Once the cap is hit the record is deleted and even
// the correct code is refused.
func VerifyResetCode(email, code string) error {
	email = utils.NormalizeEmail(email)

	var record models.PasswordResetCode
	err := database.DB.Where("email = ?", email).Order("created_at desc").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoResetRequest
		}
		return err
	}

	if record.Verified {
		return ErrResetCodeUsed
	}
	if time.Now().After(record.ExpiresAt) {
		return ErrResetCodeExpired
	}
	if record.Attempts >= resetCodeMaxAttempts {
		if err := database.DB.Delete(&record).Error; err != nil {
			return err
		}
		return ErrTooManyAttempts
	}

	if record.Code != code {
		record.Attempts++
		if err := database.DB.Save(&record).Error; err != nil {
			return err
		}
		return ErrInvalidOrExpiredCode
	}

	record.Verified = true
	return database.DB.Save(&record).Error
}

// CompletePasswordReset sets the new password after a verified code.
// The code's expiry window is extended by a short grace period so the
// user has time to type the new password.
func CompletePasswordReset(email, newPassword string) (*models.User, error) {
	email = utils.NormalizeEmail(email)

	var record models.PasswordResetCode
	err := database.DB.Where("email = ? AND verified = ?", email, true).Order("created_at desc").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoResetRequest
		}
		return nil, err
	}
	if time.Now().After(record.ExpiresAt.Add(ResetCompletionGrace)) {
		return nil, ErrResetCodeExpired
	}

	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	hashed := string(hashedPassword)
	user.Password = &hashed
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return tx.Delete(&record).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}
