package services

import (
	"context"
	"log"
	"time"

	"pairup_server/models"

	"github.com/google/uuid"
)

// Notifier is the capability the event core consumes. Delivery is
// fire-and-forget: failures are logged, never surfaced.
type Notifier interface {
	Send(ctx context.Context, userID string, payload models.NotificationPayload)
}

// NotificationService persists in-app notification records. Push delivery on
// top of the record is someone else's job.
type NotificationService struct {
	Dynamo *DynamoService
}

func NewNotificationService(dynamo *DynamoService) *NotificationService {
	return &NotificationService{Dynamo: dynamo}
}

// Send writes a notification record for the user. Never returns an error.
func (s *NotificationService) Send(ctx context.Context, userID string, payload models.NotificationPayload) {
	notification := models.Notification{
		NotificationID: uuid.NewString(),
		UserID:         userID,
		Payload:        payload,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.Dynamo.PutItem(ctx, models.NotificationsTable, notification); err != nil {
		log.Printf("❌ Failed to store notification for %s: %v", userID, err)
		return
	}
	log.Printf("🔔 Notification stored for %s: %s", userID, payload.Title)
}
