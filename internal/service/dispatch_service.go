package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/it-tracker/internal/domain"
	"github.com/spec-kit/it-tracker/internal/events"
	"github.com/spec-kit/it-tracker/internal/notify"
	"github.com/spec-kit/it-tracker/internal/repository"
)

// DispatchService turns ticket domain events into notification intents,
// fans intents out into per-recipient rows and fires at most one email
// per intent. Notifications are advisory: every failure in this path is
// logged and swallowed so the triggering ticket mutation never fails.
type DispatchService struct {
	resolver      *notify.Resolver
	notifications repository.NotificationRepository
	users         notify.UserDirectory
	mail          notify.EmailTransport
	cache         *UnreadCache
	logger        *zap.Logger
	clientURL     string
}

// DispatchDependencies bundles collaborators for the dispatch service.
type DispatchDependencies struct {
	Resolver         *notify.Resolver
	NotificationRepo repository.NotificationRepository
	Users            notify.UserDirectory
	Mail             notify.EmailTransport
	Cache            *UnreadCache
	Logger           *zap.Logger
	ClientURL        string
}

// NewDispatchService constructs the service.
func NewDispatchService(deps DispatchDependencies) *DispatchService {
	return &DispatchService{
		resolver:      deps.Resolver,
		notifications: deps.NotificationRepo,
		users:         deps.Users,
		mail:          deps.Mail,
		cache:         deps.Cache,
		logger:        deps.Logger,
		clientURL:     deps.ClientURL,
	}
}

// RegisterHandlers subscribes to ticket domain events.
func (s *DispatchService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, s.handleTicketCreated)
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.handleTicketStatusChanged)
	dispatcher.Subscribe(events.EventTicketCommentAdded, s.handleCommentAdded)
}

func (s *DispatchService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	ticketID := event.TicketID
	s.Dispatch(ctx, notify.Intent{
		Type:     domain.NotificationTicketCreated,
		Title:    "New Ticket Created",
		Message:  fmt.Sprintf("New ticket #%s: %s", ticketID, payload.Title),
		TicketID: &ticketID,
		Target:   notify.ToRole(domain.RoleAgent),
	})
	return nil
}

func (s *DispatchService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	ticketID := event.TicketID
	s.Dispatch(ctx, notify.Intent{
		Type:     domain.NotificationStatusChanged,
		Title:    "Ticket Status Updated",
		Message:  fmt.Sprintf("Ticket #%s status changed to %s", ticketID, payload.NewStatus),
		TicketID: &ticketID,
		Target:   notify.ToUser(payload.ReporterID),
	})
	return nil
}

func (s *DispatchService) handleCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommentAddedPayload)
	if !ok {
		return nil
	}
	ticketID := event.TicketID
	// The reporter is notified even about their own comments and about
	// internal notes; matching the observed product behavior.
	s.Dispatch(ctx, notify.Intent{
		Type:     domain.NotificationCommentAdded,
		Title:    "New Comment Added",
		Message:  fmt.Sprintf("New comment added to ticket #%s", ticketID),
		TicketID: &ticketID,
		Target:   notify.ToUser(payload.ReporterID),
	})
	return nil
}

// Dispatch resolves, persists and emails one intent. It is the swallow
// boundary: the returned error is for observability only and is already
// logged; callers are free to ignore it.
func (s *DispatchService) Dispatch(ctx context.Context, intent notify.Intent) error {
	if err := s.dispatch(ctx, intent); err != nil {
		s.logger.Error("notification dispatch failed",
			zap.String("type", string(intent.Type)),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *DispatchService) dispatch(ctx context.Context, intent notify.Intent) error {
	if err := intent.Validate(); err != nil {
		return err
	}

	recipients, err := s.resolver.Resolve(ctx, intent.Target)
	if err != nil {
		return fmt.Errorf("resolve recipients: %w", err)
	}

	for _, recipient := range recipients {
		n := &domain.Notification{
			UserID:   recipient.ID,
			TicketID: intent.TicketID,
			Type:     intent.Type,
			Title:    intent.Title,
			Message:  intent.Message,
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("persist notification for %s: %w", recipient.ID, err)
		}
		s.cache.Invalidate(ctx, recipient.ID)
	}

	if len(recipients) == 0 {
		return nil
	}

	// One email per intent, not per recipient: role fan-out is collapsed
	// to the first admin to avoid mail storms.
	address, err := s.emailAddress(ctx, intent.Target, recipients)
	if err != nil {
		return fmt.Errorf("resolve email address: %w", err)
	}
	if address == "" {
		return nil
	}
	if err := s.mail.Send(address, intent.Title, s.renderHTML(intent), intent.Message); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (s *DispatchService) emailAddress(ctx context.Context, target notify.Target, recipients []domain.User) (string, error) {
	if _, ok := target.UserID(); ok {
		return recipients[0].Email, nil
	}
	admin, err := s.users.FirstByRole(ctx, domain.RoleAdmin)
	if err != nil {
		// No admin on file simply means no email, not a failure.
		return "", nil
	}
	return admin.Email, nil
}

func (s *DispatchService) renderHTML(intent notify.Intent) string {
	link := ""
	if intent.TicketID != nil {
		link = fmt.Sprintf(`<p><a href="%s/tickets/%s" style="color: #007bff;">View Ticket #%s</a></p>`,
			s.clientURL, *intent.TicketID, *intent.TicketID)
	}
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">%s</h2>
  <p>%s</p>
  %s
  <hr style="margin: 20px 0;">
  <p style="color: #666; font-size: 12px;">This is an automated notification from IT Service Tracker.</p>
</div>`, intent.Title, intent.Message, link)
}
