package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
	"github.com/mentorlink/backend/notifications"
	"github.com/mentorlink/backend/services"
	"gorm.io/gorm"
)

type CreateBookingRequest struct {
	ServiceID   string `json:"service_id" validate:"required,uuid"`
	ScheduledAt string `json:"scheduled_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// CreateBooking reserves a session against an active service and opens
// a pending payment for it.
func CreateBooking(c *fiber.Ctx) error {
	menteeID := currentUserID(c)

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var service models.Service
	if err := database.DB.First(&service, "id = ? AND is_active = ?", req.ServiceID, true).Error; err != nil {
		return businessError(c, fiber.StatusNotFound, services.ErrNotFound)
	}

	scheduledAt, _ := time.Parse(time.RFC3339, req.ScheduledAt)
	if scheduledAt.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Scheduled time must be in the future"})
	}

	var booking models.Booking
	var payment models.Payment
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		booking = models.Booking{
			ServiceID:   service.ID,
			MenteeID:    menteeID,
			MentorID:    service.MentorID,
			ScheduledAt: scheduledAt,
			Status:      "pending_payment",
			Price:       service.Price,
			Currency:    service.Currency,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		payment = models.Payment{
			BookingID: &booking.ID,
			MentorID:  service.MentorID,
			MenteeID:  menteeID,
			Amount:    service.Price,
			Currency:  service.Currency,
			Provider:  "card",
			Status:    "pending",
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create booking"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"booking": booking, "payment_id": payment.ID})
}

// ConfirmPayment is the provider callback. A succeeded payment
// confirms the booking and becomes an earnings ledger row for the
// mentor's wallet.
func ConfirmPayment(c *fiber.Ctx) error {
	type Request struct {
		PaymentID     string `json:"payment_id" validate:"required,uuid"`
		Provider      string `json:"provider" validate:"required"`
		ProviderTxnID string `json:"provider_txn_id" validate:"required"`
		Succeeded     bool   `json:"succeeded"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse payload"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var payment models.Payment
	if err := database.DB.First(&payment, "id = ?", req.PaymentID).Error; err != nil {
		return businessError(c, fiber.StatusNotFound, services.ErrNotFound)
	}

	if payment.Status == "succeeded" {
		return c.JSON(fiber.Map{"message": "Payment already processed"})
	}

	if !req.Succeeded {
		payment.Status = "failed"
		database.DB.Save(&payment)
		return c.JSON(fiber.Map{"message": "Acknowledged failed payment"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		payment.Status = "succeeded"
		payment.Provider = req.Provider
		payment.ProviderTxnID = &req.ProviderTxnID
		if err := tx.Save(&payment).Error; err != nil {
			return err
		}

		if payment.BookingID == nil {
			return nil
		}
		return tx.Model(&models.Booking{}).Where("id = ?", payment.BookingID).
			Update("status", "confirmed").Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process payment"})
	}

	go notifications.Notify(payment.MentorID, "booking", "New Booking",
		fmt.Sprintf("A mentee has booked and paid $%.2f for a session with you.", payment.Amount), "normal", nil, nil)
	go notifications.Notify(payment.MenteeID, "booking", "Booking Confirmed",
		"Your payment was received and your session is confirmed.", "normal", nil, nil)

	return c.JSON(fiber.Map{"message": "Payment processed successfully"})
}

func GetMyBookings(c *fiber.Ctx) error {
	menteeID := currentUserID(c)

	var bookings []models.Booking
	database.DB.Preload("Service").Preload("Mentor").
		Where("mentee_id = ?", menteeID).Order("scheduled_at desc").Find(&bookings)

	return c.JSON(bookings)
}

func GetMentorBookings(c *fiber.Ctx) error {
	mentorID := currentUserID(c)

	var bookings []models.Booking
	database.DB.Preload("Service").Preload("Mentee").
		Where("mentor_id = ?", mentorID).Order("scheduled_at desc").Find(&bookings)

	return c.JSON(bookings)
}

// CompleteBooking lets the mentor close out a delivered session.
func CompleteBooking(c *fiber.Ctx) error {
	mentorID := currentUserID(c)
	bookingID, err := parseUUIDParam(c, "bookingId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		return businessError(c, fiber.StatusNotFound, services.ErrNotFound)
	}
	if booking.MentorID != mentorID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your booking to manage"})
	}
	if booking.Status != "confirmed" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only confirmed bookings can be completed"})
	}

	booking.Status = "completed"
	database.DB.Save(&booking)

	go notifications.Notify(booking.MenteeID, "booking", "Session Completed",
		"Your mentor marked the session as completed.", "low", nil, nil)

	return c.JSON(booking)
}
