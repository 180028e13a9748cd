package model

import "time"

// NotificationType is the kind of notification.
type NotificationType string

const (
	NotificationClaimApproved NotificationType = "claim_approved"
	NotificationClaimRejected NotificationType = "claim_rejected"
	NotificationGeneral       NotificationType = "general"
)

// NotificationPayload is the structured part of a notification.
type NotificationPayload struct {
	ClaimID  int64  `json:"claim_id,omitempty"`
	ItemID   *int64 `json:"item_id,omitempty"`
	ItemName string `json:"item_name,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Notification is an in-app message to a single user.
type Notification struct {
	ID          int64               `json:"id"`
	RecipientID int64               `json:"recipient_id"`
	Title       string              `json:"title"`
	Body        string              `json:"body"`
	Type        NotificationType    `json:"type"`
	Payload     NotificationPayload `json:"payload"`
	CreatedAt   time.Time           `json:"created_at"`
	ReadAt      *time.Time          `json:"read_at,omitempty"`
}
