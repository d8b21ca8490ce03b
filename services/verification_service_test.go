package services

import (
	"errors"
	"testing"
	"time"

	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterPendingReplacesPriorAttempt(t *testing.T) {
	setupTestDB(t)

	draft := RegistrationDraft{
		FirstName: "Amina",
		LastName:  "Odhiambo",
		Email:     "Amina@Example.com",
		Password:  "secret123",
		Role:      "mentee",
	}

	first, err := RegisterPending(draft)
	if err != nil {
		t.Fatalf("RegisterPending: %v", err)
	}
	if first.Email != "amina@example.com" {
		t.Errorf("email = %q, want normalized", first.Email)
	}
	if len(first.VerificationCode) != 6 {
		t.Errorf("code length = %d, want 6", len(first.VerificationCode))
	}

	second, err := RegisterPending(draft)
	if err != nil {
		t.Fatalf("repeat RegisterPending: %v", err)
	}

	var count int64
	database.DB.Model(&models.PendingUser{}).Where("email = ?", "amina@example.com").Count(&count)
	if count != 1 {
		t.Errorf("pending rows = %d, want 1", count)
	}
	if second.ID == first.ID {
		t.Error("repeat registration kept the old row")
	}
}

func TestRegisterPendingDuplicateEmail(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "taken@example.com", "password123", "mentee")

	_, err := RegisterPending(RegistrationDraft{
		FirstName: "Jo", LastName: "Smith", Email: "Taken@example.com", Password: "secret123", Role: "mentee",
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}

	var count int64
	database.DB.Model(&models.PendingUser{}).Where("email = ?", "taken@example.com").Count(&count)
	if count != 0 {
		t.Error("no pending row should exist after a duplicate-email rejection")
	}
}

func TestVerifyEmailPromotesMentor(t *testing.T) {
	setupTestDB(t)

	pending, err := RegisterPending(RegistrationDraft{
		FirstName: "Kofi", LastName: "Mensah", Email: "kofi@example.com", Password: "secret123", Role: "mentor",
	})
	if err != nil {
		t.Fatalf("RegisterPending: %v", err)
	}

	user, err := VerifyEmail("kofi@example.com", pending.VerificationCode)
	if err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if !user.IsVerified {
		t.Error("user not marked verified")
	}
	if user.MentorStatus == nil || *user.MentorStatus != "pending" {
		t.Errorf("mentor status = %v, want pending", user.MentorStatus)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte("secret123")); err != nil {
		t.Error("promoted user password does not match")
	}

	var profile models.MentorProfile
	if err := database.DB.First(&profile, "user_id = ?", user.ID).Error; err != nil {
		t.Errorf("mentor profile not created: %v", err)
	}

	var count int64
	database.DB.Model(&models.PendingUser{}).Where("email = ?", "kofi@example.com").Count(&count)
	if count != 0 {
		t.Error("pending row not removed after promotion")
	}
}

func TestVerifyEmailWrongCode(t *testing.T) {
	setupTestDB(t)

	_, err := RegisterPending(RegistrationDraft{
		FirstName: "Kofi", LastName: "Mensah", Email: "kofi@example.com", Password: "secret123", Role: "mentee",
	})
	if err != nil {
		t.Fatalf("RegisterPending: %v", err)
	}

	_, err = VerifyEmail("kofi@example.com", "000000")
	if !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("err = %v, want ErrInvalidOrExpiredCode", err)
	}
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	setupTestDB(t)

	pending, err := RegisterPending(RegistrationDraft{
		FirstName: "Kofi", LastName: "Mensah", Email: "kofi@example.com", Password: "secret123", Role: "mentee",
	})
	if err != nil {
		t.Fatalf("RegisterPending: %v", err)
	}

	past := time.Now().Add(-time.Minute)
	if err := database.DB.Model(pending).Update("code_expires_at", past).Error; err != nil {
		t.Fatalf("failed to expire code: %v", err)
	}

	_, err = VerifyEmail("kofi@example.com", pending.VerificationCode)
	if !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("err = %v, want ErrInvalidOrExpiredCode", err)
	}
}

func TestResendCodeRotates(t *testing.T) {
	setupTestDB(t)

	pending, err := RegisterPending(RegistrationDraft{
		FirstName: "Kofi", LastName: "Mensah", Email: "kofi@example.com", Password: "secret123", Role: "mentee",
	})
	if err != nil {
		t.Fatalf("RegisterPending: %v", err)
	}

	name, code, err := ResendCode("kofi@example.com")
	if err != nil {
		t.Fatalf("ResendCode: %v", err)
	}
	if name != "Kofi" {
		t.Errorf("name = %q, want Kofi", name)
	}
	if len(code) != 6 {
		t.Errorf("code length = %d, want 6", len(code))
	}

	// The old code must no longer work if a new one was issued.
	var reloaded models.PendingUser
	if err := database.DB.First(&reloaded, "id = ?", pending.ID).Error; err != nil {
		t.Fatalf("failed to reload pending: %v", err)
	}
	if reloaded.VerificationCode != code {
		t.Error("stored code does not match the resent one")
	}
}

func TestResendCodeUnknownEmail(t *testing.T) {
	setupTestDB(t)

	_, _, err := ResendCode("ghost@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResendCodeAlreadyVerified(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "done@example.com", "password123", "mentee")

	_, _, err := ResendCode("done@example.com")
	if !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("err = %v, want ErrAlreadyVerified", err)
	}
}

func TestRequestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	setupTestDB(t)

	user, code, err := RequestPasswordReset("ghost@example.com")
	if err != nil {
		t.Fatalf("err = %v, want nil for unknown email", err)
	}
	if user != nil || code != "" {
		t.Error("unknown email should yield no user and no code")
	}
}

func TestRequestPasswordResetOAuthAccount(t *testing.T) {
	setupTestDB(t)
	user := createTestUser(t, "social@example.com", "password123", "mentee")
	if err := database.DB.Model(user).Update("auth_provider", "google").Error; err != nil {
		t.Fatalf("failed to set provider: %v", err)
	}

	_, _, err := RequestPasswordReset("social@example.com")
	if !errors.Is(err, ErrOAuthAccount) {
		t.Fatalf("err = %v, want ErrOAuthAccount", err)
	}
}

func TestResetCodeAttemptCap(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "reset@example.com", "password123", "mentee")

	_, code, err := RequestPasswordReset("reset@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	if len(code) != 4 {
		t.Fatalf("code length = %d, want 4", len(code))
	}

	wrong := "0000"
	if wrong == code {
		wrong = "1111"
	}

	for i := 0; i < 5; i++ {
		if err := VerifyResetCode("reset@example.com", wrong); !errors.Is(err, ErrInvalidOrExpiredCode) {
			t.Fatalf("attempt %d: err = %v, want ErrInvalidOrExpiredCode", i+1, err)
		}
	}

	// The cap holds even for the correct code.
	if err := VerifyResetCode("reset@example.com", code); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("err = %v, want ErrTooManyAttempts", err)
	}

	// The record was burned, so the flow starts over.
	if err := VerifyResetCode("reset@example.com", code); !errors.Is(err, ErrNoResetRequest) {
		t.Fatalf("err = %v, want ErrNoResetRequest after burn", err)
	}
}

func TestResetCodeExpiry(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "reset@example.com", "password123", "mentee")

	_, code, err := RequestPasswordReset("reset@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}

	past := time.Now().Add(-time.Minute)
	if err := database.DB.Model(&models.PasswordResetCode{}).
		Where("email = ?", "reset@example.com").
		Update("expires_at", past).Error; err != nil {
		t.Fatalf("failed to expire code: %v", err)
	}

	if err := VerifyResetCode("reset@example.com", code); !errors.Is(err, ErrResetCodeExpired) {
		t.Fatalf("err = %v, want ErrResetCodeExpired", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "reset@example.com", "oldpassword", "mentee")

	_, code, err := RequestPasswordReset("reset@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}

	if err := VerifyResetCode("reset@example.com", code); err != nil {
		t.Fatalf("VerifyResetCode: %v", err)
	}

	// A verified code cannot be replayed.
	if err := VerifyResetCode("reset@example.com", code); !errors.Is(err, ErrResetCodeUsed) {
		t.Fatalf("err = %v, want ErrResetCodeUsed", err)
	}

	user, err := CompletePasswordReset("reset@example.com", "newpassword")
	if err != nil {
		t.Fatalf("CompletePasswordReset: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte("newpassword")); err != nil {
		t.Error("new password does not verify")
	}

	var count int64
	database.DB.Model(&models.PasswordResetCode{}).Where("email = ?", "reset@example.com").Count(&count)
	if count != 0 {
		t.Error("reset record not deleted after completion")
	}
}

func TestCompletePasswordResetRequiresVerification(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "reset@example.com", "oldpassword", "mentee")

	if _, _, err := RequestPasswordReset("reset@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}

	_, err := CompletePasswordReset("reset@example.com", "newpassword")
	if !errors.Is(err, ErrNoResetRequest) {
		t.Fatalf("err = %v, want ErrNoResetRequest for unverified code", err)
	}
}

func TestCompletePasswordResetGracePeriod(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "reset@example.com", "oldpassword", "mentee")

	_, code, err := RequestPasswordReset("reset@example.com")
	if err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	if err := VerifyResetCode("reset@example.com", code); err != nil {
		t.Fatalf("VerifyResetCode: %v", err)
	}

	// Just past expiry but inside the completion grace window.
	justExpired := time.Now().Add(-30 * time.Second)
	if err := database.DB.Model(&models.PasswordResetCode{}).
		Where("email = ?", "reset@example.com").
		Update("expires_at", justExpired).Error; err != nil {
		t.Fatalf("failed to backdate expiry: %v", err)
	}
	if _, err := CompletePasswordReset("reset@example.com", "newpassword"); err != nil {
		t.Fatalf("completion inside grace window failed: %v", err)
	}

	// And well past the grace window.
	if _, _, err := RequestPasswordReset("reset@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	var record models.PasswordResetCode
	if err := database.DB.Where("email = ?", "reset@example.com").First(&record).Error; err != nil {
		t.Fatalf("failed to load record: %v", err)
	}
	record.Verified = true
	record.ExpiresAt = time.Now().Add(-5 * time.Minute)
	if err := database.DB.Save(&record).Error; err != nil {
		t.Fatalf("failed to backdate record: %v", err)
	}
	if _, err := CompletePasswordReset("reset@example.com", "another"); !errors.Is(err, ErrResetCodeExpired) {
		t.Fatalf("err = %v, want ErrResetCodeExpired past grace window", err)
	}
}
