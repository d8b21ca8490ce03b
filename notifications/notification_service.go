package notifications

import (
	"log"

	"github.com/google/uuid"
	"github.com/mentorlink/backend/database"
	"github.com/mentorlink/backend/models"
	"github.com/mentorlink/backend/websocket"
)

// Notify writes an in-app notification and pushes it to the user's
// live websocket connection if one exists. Best-effort: failures are
// logged and never propagate to the caller.
func Notify(userID uuid.UUID, ntype, title, message, priority string, actionURL, actionText *string) {
	notification := models.Notification{
		UserID:     userID,
		Type:       ntype,
		Title:      title,
		Message:    message,
		Priority:   priority,
		ActionURL:  actionURL,
		ActionText: actionText,
	}

	if err := database.DB.Create(&notification).Error; err != nil {
		log.Printf("🔥 Failed to store notification for user %s: %v", userID, err)
		return
	}

	select {
	case websocket.Push <- &notification:
	default:
		// Hub not running or busy; the row is stored either way.
	}
}
