package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/backend/handlers"
	"github.com/mentorlink/backend/middleware"
)

func WalletRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	wallet := api.Group("/wallet", middleware.Protected(), middleware.NotRevoked(), middleware.MentorRequired())
	wallet.Get("/", handlers.GetWallet)
	wallet.Post("/methods", handlers.AddPayoutMethod)
	wallet.Put("/methods/:methodId", handlers.UpdatePayoutMethod)
	wallet.Delete("/methods/:methodId", handlers.DeletePayoutMethod)
	wallet.Post("/withdraw", handlers.RequestWithdrawal)
	wallet.Get("/requests", handlers.GetMyPayoutRequests)
}
