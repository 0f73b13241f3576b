package models

import "time"

// NotificationType classifies in-app notifications.
type NotificationType string

const (
	NotificationRequestUpdate NotificationType = "request_update"
	NotificationAssignment    NotificationType = "assignment"
	NotificationMessage       NotificationType = "message"
	NotificationReminder      NotificationType = "reminder"
)

// Notification is an in-app message for one user.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	RequestID *string          `db:"request_id" json:"request_id,omitempty"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	ActionURL *string          `db:"action_url" json:"action_url,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// NotificationFilter narrows a user's notification listing.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Page       int
	PageSize   int
}
