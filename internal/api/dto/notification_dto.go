package dto

import (
	"time"

	"github.com/spec-kit/it-tracker/internal/domain"
)

// NotificationResponse is the wire shape for notifications.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	TicketID  *string                 `json:"ticket_id,omitempty"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	IsRead    bool                    `json:"is_read"`
	CreatedAt time.Time               `json:"created_at"`
}

// NotificationFromDomain maps a domain notification to its response shape.
func NotificationFromDomain(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		TicketID:  n.TicketID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// NotificationListResponse wraps the list endpoint payload.
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Pagination    Pagination             `json:"pagination"`
}
