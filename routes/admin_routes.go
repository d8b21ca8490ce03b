package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/backend/handlers"
	"github.com/mentorlink/backend/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.NotRevoked(), middleware.AdminRequired())
	admin.Get("/mentors/pending", handlers.ListPendingMentors)
	admin.Put("/mentors/:mentorId/application", handlers.ManageMentorApplication)
	admin.Put("/mentors/:mentorId/login-pause", handlers.SetMentorLoginPause)
	admin.Get("/users", handlers.GetAllUsers)
	admin.Put("/users/:userId/status", handlers.ToggleUserStatus)
	admin.Get("/analytics", handlers.GetDashboardAnalytics)
	admin.Get("/payouts", handlers.ListPayoutRequests)
	admin.Put("/payouts/:requestId/processing", handlers.MarkPayoutProcessing)
	admin.Put("/payouts/:requestId/complete", handlers.CompletePayoutRequest)
	admin.Put("/payouts/:requestId/reject", handlers.RejectPayoutRequest)
}
