package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/it-tracker/internal/domain"
)

// NotificationRepository encapsulates notification persistence. All
// reads and mutations are scoped to the owning recipient.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	CountByUser(ctx context.Context, userID string, unreadOnly bool) (int, error)
	MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

const notificationColumns = `id, user_id, ticket_id, type, title, message, is_read, created_at`

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_id, ticket_id, type, title, message)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, is_read, created_at`
	return r.pool.QueryRow(ctx, query,
		n.UserID,
		n.TicketID,
		n.Type,
		n.Title,
		n.Message,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	clauses := []string{"user_id=$1"}
	if unreadOnly {
		clauses = append(clauses, "is_read=false")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM notifications WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		notificationColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *notificationRepository) CountByUser(ctx context.Context, userID string, unreadOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id=$1`
	if unreadOnly {
		query += ` AND is_read=false`
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead flips the read flag for a notification owned by userID.
// Marking an already-read notification again is a no-op success.
func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error) {
	query := `
        UPDATE notifications SET is_read=true
        WHERE id=$1 AND user_id=$2
        RETURNING ` + notificationColumns

	var n domain.Notification
	if err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&n.ID,
		&n.UserID,
		&n.TicketID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.IsRead,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	const query = `UPDATE notifications SET is_read=true WHERE user_id=$1 AND is_read=false`
	cmd, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *notificationRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM notifications WHERE id=$1 AND user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanNotifications(rows pgx.Rows) ([]domain.Notification, error) {
	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.TicketID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
