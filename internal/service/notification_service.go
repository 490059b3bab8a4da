package service

import (
	"context"

	"github.com/spec-kit/it-tracker/internal/domain"
	"github.com/spec-kit/it-tracker/internal/repository"
)

// NotificationService exposes the recipient-facing notification store
// operations. Every operation is scoped to the requesting user.
type NotificationService struct {
	notifications repository.NotificationRepository
	cache         *UnreadCache
}

// NewNotificationService constructs the service.
func NewNotificationService(notifications repository.NotificationRepository, cache *UnreadCache) *NotificationService {
	return &NotificationService{notifications: notifications, cache: cache}
}

// List returns one page of the user's notifications, newest first,
// plus the total matching count for pagination.
func (s *NotificationService) List(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]domain.Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	items, err := s.notifications.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.notifications.CountByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// MarkRead flips the read flag on a notification owned by userID.
// Re-marking an already-read notification succeeds unchanged.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error) {
	n, err := s.notifications.MarkRead(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, userID)
	return n, nil
}

// MarkAllRead flips every unread notification owned by userID and
// returns the number affected.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	count, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.cache.Invalidate(ctx, userID)
	return count, nil
}

// UnreadCount returns the user's unread total, served from cache when
// fresh.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if count, ok := s.cache.Get(ctx, userID); ok {
		return count, nil
	}
	count, err := s.notifications.CountByUser(ctx, userID, true)
	if err != nil {
		return 0, err
	}
	s.cache.Set(ctx, userID, count)
	return count, nil
}

// Delete removes a notification owned by userID.
func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	if err := s.notifications.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}
