package jobs

import (
	"log"
	"time"

	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
	"github.com/mentorlink/backend/services"
)

// SweepExpiredRecords removes registrations that were never verified,
// reset codes past their window and blacklist entries whose tokens
// have expired on their own.
func SweepExpiredRecords() {
	log.Println("Running job: SweepExpiredRecords...")

	now := time.Now()

	res := database.DB.Where("expires_at < ?", now).Delete(&models.PendingUser{})
	if res.Error != nil {
		log.Printf("Error sweeping pending registrations: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("Removed %d expired pending registration(s).", res.RowsAffected)
	}

	// A verified code may still be completed for a short grace period
	// past its expiry, so only reap codes beyond that window.
	res = database.DB.Where("expires_at < ?", now.Add(-services.ResetCompletionGrace)).Delete(&models.PasswordResetCode{})
	if res.Error != nil {
		log.Printf("Error sweeping reset codes: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("Removed %d expired reset code(s).", res.RowsAffected)
	}

	res = database.DB.Where("expires_at < ?", now).Delete(&models.BlacklistedToken{})
	if res.Error != nil {
		log.Printf("Error sweeping blacklisted tokens: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("Removed %d expired blacklisted token(s).", res.RowsAffected)
	}
}
