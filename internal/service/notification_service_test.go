package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/it-tracker/internal/domain"
)

func newNotificationService(repo *memNotificationRepo) *NotificationService {
	return NewNotificationService(repo, NewUnreadCache(nil))
}

func seedNotifications(t *testing.T, repo *memNotificationRepo, userID string, count int) []string {
	t.Helper()
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		n := &domain.Notification{
			UserID:  userID,
			Type:    domain.NotificationTicketCreated,
			Title:   "New Ticket Created",
			Message: fmt.Sprintf("New ticket #%d: test", i+1),
		}
		require.NoError(t, repo.Create(context.Background(), n))
		ids = append(ids, n.ID)
	}
	return ids
}

func TestListPagesCoverAllRowsNewestFirst(t *testing.T) {
	repo := newMemNotificationRepo()
	svc := newNotificationService(repo)
	ids := seedNotifications(t, repo, "u-1", 25)

	var collected []string
	var total int
	for page := 1; page <= 3; page++ {
		items, pageTotal, err := svc.List(context.Background(), "u-1", page, 10, false)
		require.NoError(t, err)
		total = pageTotal
		for _, n := range items {
			collected = append(collected, n.ID)
		}
	}
	assert.Equal(t, 25, total)
	require.Len(t, collected, 25)

	// Newest first: pages concatenate into the reversed insertion order.
	for i, id := range collected {
		assert.Equal(t, ids[len(ids)-1-i], id)
	}

	items, _, err := svc.List(context.Background(), "u-1", 4, 10, false)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListCoercesPageAndLimit(t *testing.T) {
	repo := newMemNotificationRepo()
	svc := newNotificationService(repo)
	seedNotifications(t, repo, "u-1", 3)

	items, total, err := svc.List(context.Background(), "u-1", 0, -5, false)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 3)
}

func TestListUnreadOnlyExcludesRead(t *testing.T) {
	repo := newMemNotificationRepo()
	svc := newNotificationService(repo)
	ids := seedNotifications(t, repo, "u-1", 4)

	_, err := svc.MarkRead(context.Background(), ids[0], "u-1")
	require.NoError(t, err)

	items, total, err := svc.List(context.Background(), "u-1", 1, 10, true)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 3)
	for _, n := range items {
		assert.NotEqual(t, ids[0], n.ID)
	}
}

func TestMarkReadIsIdempotent(t *testing.T) {
	repo := newMemNotificationRepo()
	svc := newNotificationService(repo)
	ids := seedNotifications(t, repo, "u-1", 1)

	first, err := svc.MarkRead(context.Background(), ids[0], "u-1")
	require.NoError(t, err)
	assert.True(t, first.IsRead)

	again, err := svc.MarkRead(context.Background(), ids[0], "u-1")
	require.NoError(t, err)
	assert.True(t, again.IsRead)
}

func TestMarkReadIsOwnerScoped(t *testing.T) {
	repo := newMemNotificationRepo()
	svc := newNotificationService(repo)
	ids := seedNotifications(t, repo, "u-1", 1)

	_, err := svc.MarkRead(context.Background(), ids[0], "u-2")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestMarkAllReadReportsZeroOnSecondCall(t *testing.T) {
	repo := newMemNotificationRepo()
	svc := newNotificationService(repo)
	seedNotifications(t, repo, "u-1", 5)
	seedNotifications(t, repo, "u-2", 2)

	count, err := svc.MarkAllRead(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	count, err = svc.MarkAllRead(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	// The other user's rows stay untouched.
	unread, err := svc.UnreadCount(context.Background(), "u-2")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)
}

func TestUnreadCountTracksReads(t *testing.T) {
	repo := newMemNotificationRepo()
	svc := newNotificationService(repo)
	ids := seedNotifications(t, repo, "u-1", 3)

	count, err := svc.UnreadCount(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = svc.MarkRead(context.Background(), ids[1], "u-1")
	require.NoError(t, err)

	count, err = svc.UnreadCount(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	repo := newMemNotificationRepo()
	svc := newNotificationService(repo)
	ids := seedNotifications(t, repo, "u-1", 2)

	err := svc.Delete(context.Background(), ids[0], "u-2")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	require.NoError(t, svc.Delete(context.Background(), ids[0], "u-1"))

	_, total, err := svc.List(context.Background(), "u-1", 1, 10, false)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
