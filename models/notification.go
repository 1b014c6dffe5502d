package models

import "time"

// NotificationPayload is what collaborators hand to the notifier.
type NotificationPayload struct {
	Title string            `dynamodbav:"title" json:"title"`
	Body  string            `dynamodbav:"body" json:"body"`
	Data  map[string]string `dynamodbav:"data,omitempty" json:"data,omitempty"`
}

// Notification is the persisted in-app inbox record. Delivery beyond this
// record is fire-and-forget.
type Notification struct {
	NotificationID string              `dynamodbav:"notificationId" json:"notificationId"`
	UserID         string              `dynamodbav:"userId" json:"userId"`
	Payload        NotificationPayload `dynamodbav:"payload" json:"payload"`
	CreatedAt      time.Time           `dynamodbav:"createdAt" json:"createdAt"`
	IsRead         bool                `dynamodbav:"isRead" json:"isRead"`
}

// NotificationsTable is the DynamoDB table name for notifications
const NotificationsTable = "Notifications"
