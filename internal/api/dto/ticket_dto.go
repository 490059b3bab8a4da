package dto

import (
	"time"

	"github.com/spec-kit/it-tracker/internal/domain"
)

// CreateTicketRequest payload for filing a ticket.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    *string               `json:"category,omitempty"`
}

// UpdateTicketRequest payload for partial ticket updates.
type UpdateTicketRequest struct {
	Title       *string                `json:"title,omitempty"`
	Description *string                `json:"description,omitempty"`
	Status      *domain.TicketStatus   `json:"status,omitempty"`
	Priority    *domain.TicketPriority `json:"priority,omitempty"`
	Category    *string                `json:"category,omitempty"`
	AssigneeID  *string                `json:"assigneeId,omitempty"`
}

// CreateCommentRequest payload for ticket comments.
type CreateCommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"isInternal"`
}

// TicketResponse is the wire shape for tickets.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    *string               `json:"category,omitempty"`
	ReporterID  string                `json:"reporter_id"`
	AssigneeID  *string               `json:"assignee_id,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	ResolvedAt  *time.Time            `json:"resolved_at,omitempty"`
}

// TicketFromDomain maps a domain ticket to its response shape.
func TicketFromDomain(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Category:    t.Category,
		ReporterID:  t.ReporterID,
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		ResolvedAt:  t.ResolvedAt,
	}
}

// CommentResponse is the wire shape for comments.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// CommentFromDomain maps a domain comment to its response shape.
func CommentFromDomain(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		TicketID:   c.TicketID,
		UserID:     c.UserID,
		Content:    c.Content,
		IsInternal: c.IsInternal,
		CreatedAt:  c.CreatedAt,
	}
}
