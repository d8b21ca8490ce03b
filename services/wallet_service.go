package services

import (
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
	"gorm.io/gorm"
)

const (
	MinimumWithdrawalAmount = 50.0
	PlatformFeeRate         = 0.20
)

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type WalletTotals struct {
	AvailableBalance float64 `json:"available_balance"`
	TotalWithdrawn   float64 `json:"total_withdrawn"`
	PendingEarnings  float64 `json:"pending_earnings"`
}

// ComputeWalletTotals derives the wallet figures from the ledger:
// succeeded earnings minus completed payouts minus funds locked by
// in-flight (pending/processing) payouts.
func ComputeWalletTotals(tx *gorm.DB, mentorID uuid.UUID) (WalletTotals, error) {
	var totals WalletTotals

	var earned float64
	err := tx.Model(&models.Payment{}).
		Where("mentor_id = ? AND status = ?", mentorID, "succeeded").
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&earned)
	if err != nil {
		return totals, err
	}

	var completed float64
	err = tx.Model(&models.PayoutRequest{}).
		Where("mentor_id = ? AND status = ?", mentorID, "completed").
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&completed)
	if err != nil {
		return totals, err
	}

	var locked float64
	err = tx.Model(&models.PayoutRequest{}).
		Where("mentor_id = ? AND status IN ?", mentorID, []string{"pending", "processing"}).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&locked)
	if err != nil {
		return totals, err
	}

	var pendingEarnings float64
	err = tx.Model(&models.Payment{}).
		Where("mentor_id = ? AND status = ?", mentorID, "pending").
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&pendingEarnings)
	if err != nil {
		return totals, err
	}

	totals.AvailableBalance = Round2(earned - completed - locked)
	totals.TotalWithdrawn = Round2(completed)
	totals.PendingEarnings = Round2(pendingEarnings)
	return totals, nil
}

// ReconcileWallet recomputes the cached balance columns from the
// ledger and persists them only when they drifted. Safe to call on
// every wallet read.
func ReconcileWallet(mentorID uuid.UUID) (WalletTotals, error) {
	var totals WalletTotals

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var profile models.MentorProfile
		if err := tx.First(&profile, "user_id = ?", mentorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		computed, err := ComputeWalletTotals(tx, mentorID)
		if err != nil {
			return err
		}
		totals = computed

		if sameAmount(profile.AvailableBalance, computed.AvailableBalance) &&
			sameAmount(profile.TotalWithdrawn, computed.TotalWithdrawn) &&
			sameAmount(profile.PendingEarnings, computed.PendingEarnings) {
			return nil
		}

		return persistWalletCache(tx, mentorID, &profile, computed)
	})

	return totals, err
}

// persistWalletCache writes recomputed totals only while the cached
// columns still hold the values observed at read time. Zero rows
// affected means a concurrent payout operation moved the cache after
// the read; its figures are newer, so the stale write is dropped and
// the next reconcile picks up the ledger state.
func persistWalletCache(tx *gorm.DB, mentorID uuid.UUID, observed *models.MentorProfile, computed WalletTotals) error {
	return tx.Model(&models.MentorProfile{}).
		Where("user_id = ? AND available_balance = ? AND total_withdrawn = ? AND pending_earnings = ?",
			mentorID, observed.AvailableBalance, observed.TotalWithdrawn, observed.PendingEarnings).
		Updates(map[string]interface{}{
			"available_balance": computed.AvailableBalance,
			"total_withdrawn":   computed.TotalWithdrawn,
			"pending_earnings":  computed.PendingEarnings,
		}).Error
}

func sameAmount(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

// RequestWithdrawal locks the gross amount and creates the payout
// request atomically. The balance check and decrement run as a single
// conditional UPDATE so two concurrent requests cannot both spend the
// same funds.
func RequestWithdrawal(mentorID uuid.UUID, amount float64, methodID uuid.UUID) (*models.PayoutRequest, error) {
	if amount < MinimumWithdrawalAmount {
		return nil, ErrBelowMinimumWithdrawal
	}

	if _, err := ReconcileWallet(mentorID); err != nil {
		return nil, err
	}

	var request models.PayoutRequest
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var method models.PayoutMethod
		if err := tx.First(&method, "id = ? AND mentor_id = ?", methodID, mentorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMethodNotFound
			}
			return err
		}

		res := tx.Model(&models.MentorProfile{}).
			Where("user_id = ? AND available_balance >= ?", mentorID, amount).
			Update("available_balance", gorm.Expr("available_balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		snapshot, err := json.Marshal(models.PayoutMethodSnapshot{
			Type:          method.Type,
			BankName:      method.BankName,
			Country:       method.Country,
			AccountNumber: method.AccountNumber,
			AccountTitle:  method.AccountTitle,
		})
		if err != nil {
			return err
		}

		fee := Round2(amount * PlatformFeeRate)
		request = models.PayoutRequest{
			MentorID:       mentorID,
			Amount:         amount,
			PlatformFee:    fee,
			NetAmount:      Round2(amount - fee),
			Status:         "pending",
			MethodSnapshot: snapshot,
			RequestedAt:    time.Now(),
		}
		return tx.Create(&request).Error
	})
	if err != nil {
		return nil, err
	}

	return &request, nil
}

// MarkPayoutProcessing moves a pending request to processing.
func MarkPayoutProcessing(requestID, adminID uuid.UUID) (*models.PayoutRequest, error) {
	var request models.PayoutRequest
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Mentor").First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if request.Status != "pending" {
			return ErrInvalidPayoutState
		}

		request.Status = "processing"
		request.ProcessedBy = &adminID
		return tx.Save(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// CompletePayout finalizes a payout. Funds were already deducted at
// request time, so completion only moves the gross amount into the
// withdrawn total.
func CompletePayout(requestID, adminID uuid.UUID, receiptURL, notes string) (*models.PayoutRequest, error) {
	var request models.PayoutRequest
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Mentor").First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if request.Status == "completed" {
			return ErrAlreadyCompleted
		}
		if request.Status != "pending" && request.Status != "processing" {
			return ErrInvalidPayoutState
		}

		now := time.Now()
		request.Status = "completed"
		request.ReceiptURL = &receiptURL
		request.AdminNotes = &notes
		request.ProcessedAt = &now
		request.ProcessedBy = &adminID
		if err := tx.Save(&request).Error; err != nil {
			return err
		}

		return tx.Model(&models.MentorProfile{}).
			Where("user_id = ?", request.MentorID).
			Update("total_withdrawn", gorm.Expr("total_withdrawn + ?", request.Amount)).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// RejectPayout returns the locked gross amount to the wallet and
// closes the request. Rejected is terminal.
func RejectPayout(requestID, adminID uuid.UUID, notes string) (*models.PayoutRequest, error) {
	var request models.PayoutRequest
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Mentor").First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if request.Status != "pending" && request.Status != "processing" {
			return ErrInvalidPayoutState
		}

		now := time.Now()
		request.Status = "rejected"
		request.AdminNotes = &notes
		request.ProcessedAt = &now
		request.ProcessedBy = &adminID
		if err := tx.Save(&request).Error; err != nil {
			return err
		}

		return tx.Model(&models.MentorProfile{}).
			Where("user_id = ?", request.MentorID).
			Update("available_balance", gorm.Expr("available_balance + ?", request.Amount)).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}
