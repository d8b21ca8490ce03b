package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/backend/handlers"
	"github.com/mentorlink/backend/middleware"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.RegisterUser)
	auth.Post("/verify-email", handlers.VerifyEmail)
	auth.Post("/resend-code", handlers.ResendVerificationCode)
	auth.Post("/login", handlers.LoginUser)
	auth.Post("/logout", middleware.Protected(), middleware.NotRevoked(), handlers.LogoutUser)
	auth.Post("/forgot-password", handlers.ForgotPassword)
	auth.Post("/verify-reset-code", handlers.VerifyResetCode)
	auth.Post("/reset-password", handlers.ResetPassword)
}
