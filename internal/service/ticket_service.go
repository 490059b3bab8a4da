package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/it-tracker/internal/domain"
	"github.com/spec-kit/it-tracker/internal/events"
	"github.com/spec-kit/it-tracker/internal/repository"
	"github.com/spec-kit/it-tracker/pkg/util"
)

// TicketService coordinates ticket workflows and publishes the domain
// events that drive notification dispatch.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	Dispatcher  events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    *string
}

// TicketUpdateInput describes a partial ticket update; nil fields are
// left untouched.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	Category    *string
	AssigneeID  *string
}

// TicketStats aggregates board counts for the overview endpoint.
type TicketStats struct {
	ByStatus   []repository.StatusCount
	ByPriority []repository.StatusCount
	ByCategory []repository.StatusCount
}

// CreateTicket files a new ticket for the reporter and notifies the
// agent queue.
func (s *TicketService) CreateTicket(ctx context.Context, reporterID string, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, util.NewValidationError("title and description required", nil)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidTicketPriority(priority) {
		return nil, util.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusTodo,
		Priority:    priority,
		Category:    input.Category,
		ReporterID:  reporterID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  reporterID,
		Payload: events.TicketCreatedPayload{
			Title:      ticket.Title,
			Priority:   ticket.Priority,
			ReporterID: ticket.ReporterID,
		},
	})
	return ticket, nil
}

// ListTickets returns one page of tickets plus the total matching count.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.tickets.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

// GetTicket fetches a ticket with its comment thread.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, comments, nil
}

// UpdateTicket applies a partial update. Only staff or the reporter may
// mutate a ticket. A status change, and only a status change, notifies
// the reporter; edits to other fields are silent.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && ticket.ReporterID != actor.ID {
		return nil, util.NewForbidden("only staff or the reporter may update a ticket")
	}

	oldStatus := ticket.Status
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, util.NewValidationError("title cannot be empty", nil)
		}
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		// Any status may follow any other; the kanban board has no
		// enforced transition graph.
		if !domain.ValidTicketStatus(*input.Status) {
			return nil, util.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		ticket.Status = *input.Status
	}
	if input.Priority != nil {
		if !domain.ValidTicketPriority(*input.Priority) {
			return nil, util.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
	}
	if input.Category != nil {
		ticket.Category = input.Category
	}
	if input.AssigneeID != nil {
		if *input.AssigneeID == "" {
			ticket.AssigneeID = nil
		} else {
			ticket.AssigneeID = input.AssigneeID
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if ticket.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			ActorID:  actor.ID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus:  oldStatus,
				NewStatus:  ticket.Status,
				ReporterID: ticket.ReporterID,
			},
		})
	}
	return ticket, nil
}

// AddComment appends a comment and notifies the ticket's reporter.
func (s *TicketService) AddComment(ctx context.Context, actor *domain.User, ticketID, content string, isInternal bool) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, util.NewValidationError("content required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		UserID:     actor.ID,
		Content:    content,
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:  comment.ID,
			AuthorID:   actor.ID,
			ReporterID: ticket.ReporterID,
			IsInternal: comment.IsInternal,
		},
	})
	return comment, nil
}

// Stats returns ticket counts grouped by status, priority and category.
func (s *TicketService) Stats(ctx context.Context) (*TicketStats, error) {
	byStatus, err := s.tickets.CountsBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	byPriority, err := s.tickets.CountsBy(ctx, "priority")
	if err != nil {
		return nil, err
	}
	byCategory, err := s.tickets.CountsBy(ctx, "category")
	if err != nil {
		return nil, err
	}
	return &TicketStats{ByStatus: byStatus, ByPriority: byPriority, ByCategory: byCategory}, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
