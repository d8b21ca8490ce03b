package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/backend/handlers"
	"github.com/mentorlink/backend/middleware"
)

func MentorRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Public directory of approved mentors.
	api.Get("/mentors", handlers.ListApprovedMentors)
	api.Get("/mentors/:mentorId", handlers.GetMentorProfile)

	mentor := api.Group("/mentor", middleware.Protected(), middleware.NotRevoked(), middleware.MentorRequired())
	mentor.Get("/profile", handlers.GetMyMentorProfile)
	mentor.Put("/profile", handlers.UpdateMyMentorProfile)
	mentor.Get("/services", handlers.ListMyServices)
	mentor.Post("/services", handlers.CreateService)
	mentor.Put("/services/:serviceId", handlers.UpdateService)
	mentor.Delete("/services/:serviceId", handlers.DeactivateService)
	mentor.Get("/bookings", handlers.GetMentorBookings)
	mentor.Put("/bookings/:bookingId/complete", handlers.CompleteBooking)
}
