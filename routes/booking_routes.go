package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/backend/handlers"
	"github.com/mentorlink/backend/middleware"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	bookings := api.Group("/bookings", middleware.Protected(), middleware.NotRevoked())
	bookings.Post("/", handlers.CreateBooking)
	bookings.Get("/", handlers.GetMyBookings)
	bookings.Post("/confirm-payment", handlers.ConfirmPayment)
}
