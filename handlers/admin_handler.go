package handlers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
	"github.com/mentorlink/backend/notifications"
	"github.com/mentorlink/backend/services"
)

func ListPendingMentors(c *fiber.Ctx) error {
	var pendingMentors []models.User
	if err := database.DB.Where("role = ? AND mentor_status = ?", "mentor", "pending").Find(&pendingMentors).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(pendingMentors)
}

// ManageMentorApplication approves or rejects a mentor. Notification
// delivery is best-effort; the decision stands either way.
func ManageMentorApplication(c *fiber.Ctx) error {
	type MgtRequest struct {
		Status string `json:"status" validate:"required,oneof=approved rejected"`
		Reason string `json:"reason"`
	}

	var req MgtRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return businessError(c, fiber.StatusBadRequest, services.ErrInvalidStatus)
	}

	mentorID, err := parseUUIDParam(c, "mentorId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor ID"})
	}

	user, err := services.SetMentorStatus(mentorID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return businessError(c, fiber.StatusBadRequest, err)
		case errors.Is(err, services.ErrNotFound):
			return businessError(c, fiber.StatusNotFound, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update application status"})
	}

	approved := req.Status == "approved"
	go notifications.SendApprovalDecision(user.FirstName, user.Email, approved, req.Reason)
	go func() {
		if approved {
			notifications.Notify(user.ID, "mentor_approval", "Application Approved",
				"Your mentor application has been approved. You can now list services.", "high", nil, nil)
			return
		}
		message := "Your mentor application was not approved."
		if req.Reason != "" {
			message += " Reason: " + req.Reason
		}
		notifications.Notify(user.ID, "mentor_approval", "Application Update", message, "high", nil, nil)
	}()

	return c.JSON(user)
}

func SetMentorLoginPause(c *fiber.Ctx) error {
	type Request struct {
		Paused bool `json:"paused"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	mentorID, err := parseUUIDParam(c, "mentorId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid mentor ID"})
	}

	user, err := services.SetLoginPause(mentorID, req.Paused)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return businessError(c, fiber.StatusNotFound, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update pause state"})
	}

	return c.JSON(user)
}

func GetAllUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := strings.TrimSpace(c.Query("search"))
	offset := (page - 1) * limit

	var users []models.User
	var totalUsers int64

	query := database.DB.Model(&models.User{})
	countQuery := database.DB.Model(&models.User{})

	if search != "" {
		searchTerm := "%" + strings.ToLower(search) + "%"
		filter := "LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?"
		query = query.Where(filter, searchTerm, searchTerm, searchTerm)
		countQuery = countQuery.Where(filter, searchTerm, searchTerm, searchTerm)
	}

	countQuery.Count(&totalUsers)
	query.Offset(offset).Limit(limit).Find(&users)

	return c.JSON(fiber.Map{
		"data": users,
		"meta": fiber.Map{
			"total_users":  totalUsers,
			"total_pages":  int(math.Ceil(float64(totalUsers) / float64(limit))),
			"current_page": page,
		},
	})
}

func ToggleUserStatus(c *fiber.Ctx) error {
	userID := c.Params("userId")
	type Request struct {
		IsActive bool `json:"is_active"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	result := database.DB.Model(&models.User{}).Where("id = ?", userID).Update("is_active", req.IsActive)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user status"})
	}
	if result.RowsAffected == 0 {
		return businessError(c, fiber.StatusNotFound, services.ErrNotFound)
	}

	return c.JSON(fiber.Map{"message": "User status updated successfully."})
}

func GetDashboardAnalytics(c *fiber.Ctx) error {
	var totalMentees, totalApprovedMentors, pendingApplications, pendingPayouts int64
	var totalRevenue float64

	database.DB.Model(&models.User{}).Where("role = ?", "mentee").Count(&totalMentees)
	database.DB.Model(&models.User{}).
		Where("role = ? AND (mentor_status IS NULL OR mentor_status = ?)", "mentor", "approved").
		Count(&totalApprovedMentors)
	database.DB.Model(&models.User{}).Where("role = ? AND mentor_status = ?", "mentor", "pending").Count(&pendingApplications)
	database.DB.Model(&models.PayoutRequest{}).Where("status IN ?", []string{"pending", "processing"}).Count(&pendingPayouts)
	database.DB.Model(&models.Payment{}).Where("status = ?", "succeeded").
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&totalRevenue)

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
	var bookingsLast30Days int64
	database.DB.Model(&models.Booking{}).Where("created_at > ?", thirtyDaysAgo).Count(&bookingsLast30Days)

	return c.JSON(fiber.Map{
		"total_mentees":          totalMentees,
		"total_approved_mentors": totalApprovedMentors,
		"pending_applications":   pendingApplications,
		"pending_payouts":        pendingPayouts,
		"total_revenue":          totalRevenue,
		"bookings_last_30_days":  bookingsLast30Days,
	})
}

func ListPayoutRequests(c *fiber.Ctx) error {
	status := c.Query("status", "pending")

	var requests []models.PayoutRequest
	database.DB.Preload("Mentor").Where("status = ?", status).Order("requested_at asc").Find(&requests)
	return c.JSON(requests)
}

func MarkPayoutProcessing(c *fiber.Ctx) error {
	requestID, err := parseUUIDParam(c, "requestId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	request, err := services.MarkPayoutProcessing(requestID, currentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return businessError(c, fiber.StatusNotFound, err)
		case errors.Is(err, services.ErrInvalidPayoutState):
			return businessError(c, fiber.StatusConflict, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update payout request"})
	}

	return c.JSON(request)
}

func CompletePayoutRequest(c *fiber.Ctx) error {
	type Request struct {
		ReceiptURL string `json:"receipt_url" validate:"required,url"`
		AdminNotes string `json:"admin_notes"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	requestID, err := parseUUIDParam(c, "requestId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	request, err := services.CompletePayout(requestID, currentUserID(c), req.ReceiptURL, req.AdminNotes)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return businessError(c, fiber.StatusNotFound, err)
		case errors.Is(err, services.ErrAlreadyCompleted), errors.Is(err, services.ErrInvalidPayoutState):
			return businessError(c, fiber.StatusConflict, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete payout"})
	}

	mentor := request.Mentor
	go notifications.SendPayoutCompleted(mentor.FirstName, mentor.Email, request.Amount, request.PlatformFee, request.NetAmount)
	go notifications.Notify(request.MentorID, "payout", "Payout Processed",
		fmt.Sprintf("Your withdrawal of $%.2f has been processed. $%.2f was sent after the $%.2f platform fee.",
			request.Amount, request.NetAmount, request.PlatformFee), "normal", nil, nil)

	return c.JSON(request)
}

func RejectPayoutRequest(c *fiber.Ctx) error {
	type Request struct {
		AdminNotes string `json:"admin_notes" validate:"required"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	requestID, err := parseUUIDParam(c, "requestId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request ID"})
	}

	request, err := services.RejectPayout(requestID, currentUserID(c), req.AdminNotes)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return businessError(c, fiber.StatusNotFound, err)
		case errors.Is(err, services.ErrInvalidPayoutState):
			return businessError(c, fiber.StatusConflict, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reject payout"})
	}

	mentor := request.Mentor
	go notifications.SendPayoutRejected(mentor.FirstName, mentor.Email, request.Amount, req.AdminNotes)
	go notifications.Notify(request.MentorID, "payout", "Payout Request Rejected",
		fmt.Sprintf("Your withdrawal of $%.2f was rejected and the funds were returned to your balance.", request.Amount),
		"normal", nil, nil)

	return c.JSON(request)
}
