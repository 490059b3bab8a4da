package domain

import "time"

// NotificationType tags the event that produced a notification.
type NotificationType string

const (
	NotificationTicketCreated NotificationType = "ticket_created"
	NotificationStatusChanged NotificationType = "status_changed"
	NotificationCommentAdded  NotificationType = "comment_added"
)

// Notification is an append-only, per-recipient fact. A role-targeted
// intent fans out into one row per user holding the role; mutation is
// limited to the read flag, deletion to the owning recipient.
type Notification struct {
	ID        string
	UserID    string
	TicketID  *string
	Type      NotificationType
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
