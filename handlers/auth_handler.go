package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	config "github.com/mentorlink/backend/configs"
	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
	"github.com/mentorlink/backend/notifications"
	"github.com/mentorlink/backend/services"
	"github.com/mentorlink/backend/utils"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2"`
	LastName  string `json:"last_name" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role" validate:"required,oneof=mentee mentor"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	MentorStatus *string   `json:"mentor_status"`
	CreatedAt    time.Time `json:"created_at"`
}

func toUserResponse(user *models.User) UserResponse {
	role := ""
	if user.Role != nil {
		role = *user.Role
	}
	return UserResponse{
		ID:           user.ID.String(),
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		Role:         role,
		MentorStatus: user.MentorStatus,
		CreatedAt:    user.CreatedAt,
	}
}

// issueSession signs a session token and remembers it on the user row
// so an admin pause can revoke it immediately.
func issueSession(user *models.User) (string, error) {
	role := ""
	if user.Role != nil {
		role = *user.Role
	}
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Config("JWT_SECRET")))
	if err != nil {
		return "", err
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("current_session_token", signed).Error; err != nil {
		return "", err
	}
	return signed, nil
}

func RegisterUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	pending, err := services.RegisterPending(services.RegistrationDraft{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			return businessError(c, fiber.StatusConflict, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to register"})
	}

	go notifications.SendVerificationCode(pending.FirstName, pending.Email, pending.VerificationCode)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration received. Check your email for the verification code.",
		"email":   pending.Email,
	})
}

func VerifyEmail(c *fiber.Ctx) error {
	type Request struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=6,numeric"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := services.VerifyEmail(req.Email, req.Code)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOrExpiredCode) {
			return businessError(c, fiber.StatusBadRequest, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to verify email"})
	}

	token, err := issueSession(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.JSON(fiber.Map{"token": token, "user": toUserResponse(user)})
}

func ResendVerificationCode(c *fiber.Ctx) error {
	type Request struct {
		Email string `json:"email" validate:"required,email"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	name, code, err := services.ResendCode(req.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return businessError(c, fiber.StatusNotFound, err)
		case errors.Is(err, services.ErrAlreadyVerified):
			return businessError(c, fiber.StatusConflict, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to resend code"})
	}

	go notifications.SendVerificationCode(name, utils.NormalizeEmail(req.Email), code)

	return c.JSON(fiber.Map{"message": "A new verification code has been sent."})
}

func LoginUser(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	result := database.DB.Where("email = ?", utils.NormalizeEmail(req.Email)).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return businessError(c, fiber.StatusUnauthorized, services.ErrInvalidCredentials)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	if err := services.CheckLoginAdmission(&user, req.Password); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return businessError(c, fiber.StatusUnauthorized, err)
		}
		return businessError(c, fiber.StatusForbidden, err)
	}

	token, err := issueSession(&user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.JSON(fiber.Map{"token": token, "user": toUserResponse(&user)})
}

func LogoutUser(c *fiber.Ctx) error {
	token := rawBearerToken(c)
	if token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing token"})
	}

	userID := currentUserID(c)
	if err := services.BlacklistToken(token, userID, services.TokenExpiry(token)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to log out"})
	}

	return c.JSON(fiber.Map{"message": "Logged out successfully."})
}

func ForgotPassword(c *fiber.Ctx) error {
	type Request struct {
		Email string `json:"email" validate:"required,email"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, code, err := services.RequestPasswordReset(req.Email)
	if err != nil {
		if errors.Is(err, services.ErrOAuthAccount) {
			return businessError(c, fiber.StatusBadRequest, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process request"})
	}

	if user != nil {
		go notifications.SendPasswordResetCode(user.FirstName, user.Email, code)
	}

	return c.JSON(fiber.Map{"message": "If an account with that email exists, a reset code has been sent."})
}

func VerifyResetCode(c *fiber.Ctx) error {
	type Request struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=4,numeric"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := services.VerifyResetCode(req.Email, req.Code); err != nil {
		if errors.Is(err, services.ErrTooManyAttempts) {
			return businessError(c, fiber.StatusTooManyRequests, err)
		}
		return businessError(c, fiber.StatusBadRequest, err)
	}

	return c.JSON(fiber.Map{"message": "Code verified. You may now set a new password."})
}

func ResetPassword(c *fiber.Ctx) error {
	type Request struct {
		Email       string `json:"email" validate:"required,email"`
		NewPassword string `json:"new_password" validate:"required,min=6"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if _, err := services.CompletePasswordReset(req.Email, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrNoResetRequest), errors.Is(err, services.ErrResetCodeExpired):
			return businessError(c, fiber.StatusBadRequest, err)
		case errors.Is(err, services.ErrNotFound):
			return businessError(c, fiber.StatusNotFound, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reset password"})
	}

	return c.JSON(fiber.Map{"message": "Password has been reset successfully."})
}
