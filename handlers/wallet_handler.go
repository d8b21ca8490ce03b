package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
	"github.com/mentorlink/backend/services"
	"gorm.io/gorm"
)

const recentPayoutRequestLimit = 10

// GetWallet reconciles the cached balances against the ledger before
// returning them, so the caller always sees derived figures.
func GetWallet(c *fiber.Ctx) error {
	mentorID := currentUserID(c)

	totals, err := services.ReconcileWallet(mentorID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return businessError(c, fiber.StatusNotFound, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load wallet"})
	}

	var methods []models.PayoutMethod
	database.DB.Where("mentor_id = ?", mentorID).Order("created_at asc").Find(&methods)

	var requests []models.PayoutRequest
	database.DB.Where("mentor_id = ?", mentorID).
		Order("requested_at desc").
		Limit(recentPayoutRequestLimit).
		Find(&requests)

	return c.JSON(fiber.Map{
		"available_balance": totals.AvailableBalance,
		"total_withdrawn":   totals.TotalWithdrawn,
		"pending_earnings":  totals.PendingEarnings,
		"payout_methods":    methods,
		"recent_requests":   requests,
	})
}

type PayoutMethodRequest struct {
	Type          string `json:"type" validate:"required"`
	BankName      string `json:"bank_name" validate:"required"`
	Country       string `json:"country" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required"`
	AccountTitle  string `json:"account_title" validate:"required"`
	IsDefault     bool   `json:"is_default"`
}

func listPayoutMethods(mentorID uuid.UUID) ([]models.PayoutMethod, error) {
	var methods []models.PayoutMethod
	err := database.DB.Where("mentor_id = ?", mentorID).Order("created_at asc").Find(&methods).Error
	return methods, err
}

func AddPayoutMethod(c *fiber.Ctx) error {
	mentorID := currentUserID(c)

	var req PayoutMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := tx.Model(&models.PayoutMethod{}).Where("mentor_id = ?", mentorID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}

		method := models.PayoutMethod{
			MentorID:      mentorID,
			Type:          req.Type,
			BankName:      req.BankName,
			Country:       req.Country,
			AccountNumber: req.AccountNumber,
			AccountTitle:  req.AccountTitle,
			IsDefault:     req.IsDefault,
		}
		return tx.Create(&method).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add payout method"})
	}

	methods, err := listPayoutMethods(mentorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load payout methods"})
	}
	return c.Status(fiber.StatusCreated).JSON(methods)
}

type PayoutMethodPatch struct {
	Type          *string `json:"type"`
	BankName      *string `json:"bank_name"`
	Country       *string `json:"country"`
	AccountNumber *string `json:"account_number"`
	AccountTitle  *string `json:"account_title"`
	IsDefault     *bool   `json:"is_default"`
}

func UpdatePayoutMethod(c *fiber.Ctx) error {
	mentorID := currentUserID(c)
	methodID := c.Params("methodId")

	var req PayoutMethodPatch
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var method models.PayoutMethod
		if err := tx.First(&method, "id = ? AND mentor_id = ?", methodID, mentorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrMethodNotFound
			}
			return err
		}

		if req.Type != nil {
			method.Type = *req.Type
		}
		if req.BankName != nil {
			method.BankName = *req.BankName
		}
		if req.Country != nil {
			method.Country = *req.Country
		}
		if req.AccountNumber != nil {
			method.AccountNumber = *req.AccountNumber
		}
		if req.AccountTitle != nil {
			method.AccountTitle = *req.AccountTitle
		}
		if req.IsDefault != nil {
			if *req.IsDefault {
				if err := tx.Model(&models.PayoutMethod{}).Where("mentor_id = ?", mentorID).
					Update("is_default", false).Error; err != nil {
					return err
				}
			}
			method.IsDefault = *req.IsDefault
		}

		return tx.Save(&method).Error
	})
	if err != nil {
		if errors.Is(err, services.ErrMethodNotFound) {
			return businessError(c, fiber.StatusNotFound, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update payout method"})
	}

	methods, err := listPayoutMethods(mentorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load payout methods"})
	}
	return c.JSON(methods)
}

func DeletePayoutMethod(c *fiber.Ctx) error {
	mentorID := currentUserID(c)
	methodID := c.Params("methodId")

	result := database.DB.Delete(&models.PayoutMethod{}, "id = ? AND mentor_id = ?", methodID, mentorID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete payout method"})
	}
	if result.RowsAffected == 0 {
		return businessError(c, fiber.StatusNotFound, services.ErrMethodNotFound)
	}

	methods, err := listPayoutMethods(mentorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load payout methods"})
	}
	return c.JSON(methods)
}

type WithdrawalRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	MethodID string  `json:"method_id" validate:"required,uuid"`
}

func RequestWithdrawal(c *fiber.Ctx) error {
	mentorID := currentUserID(c)

	var req WithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	request, err := services.RequestWithdrawal(mentorID, req.Amount, uuid.MustParse(req.MethodID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBelowMinimumWithdrawal), errors.Is(err, services.ErrInsufficientBalance):
			return businessError(c, fiber.StatusBadRequest, err)
		case errors.Is(err, services.ErrMethodNotFound), errors.Is(err, services.ErrNotFound):
			return businessError(c, fiber.StatusNotFound, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create payout request"})
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

func GetMyPayoutRequests(c *fiber.Ctx) error {
	mentorID := currentUserID(c)

	var requests []models.PayoutRequest
	database.DB.Where("mentor_id = ?", mentorID).Order("requested_at desc").Find(&requests)

	return c.JSON(requests)
}
