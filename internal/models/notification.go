package models

import "time"

// NotificationType hints clients how to present a notification.
type NotificationType string

const (
	NotificationDocumentSubmitted NotificationType = "DOCUMENT_SUBMITTED"
	NotificationDocumentForwarded NotificationType = "DOCUMENT_FORWARDED"
	NotificationDocumentApproved  NotificationType = "DOCUMENT_APPROVED"
	NotificationDocumentRejected  NotificationType = "DOCUMENT_REJECTED"
)

// Notification is one delivered message for a user.
type Notification struct {
	ID          string           `db:"id" json:"id"`
	UserID      string           `db:"user_id" json:"user_id"`
	Title       string           `db:"title" json:"title"`
	Description string           `db:"description" json:"description"`
	Type        NotificationType `db:"type" json:"type"`
	Link        string           `db:"link" json:"link"`
	Metadata    []byte           `db:"metadata" json:"metadata,omitempty"`
	ReadAt      *time.Time       `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// NotificationFilter narrows listing queries.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}
