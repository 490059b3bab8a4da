package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/it-tracker/internal/domain"
	"github.com/spec-kit/it-tracker/internal/repository"
)

// memUserDirectory satisfies notify.UserDirectory.
type memUserDirectory struct {
	users []domain.User
}

func (d *memUserDirectory) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range d.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (d *memUserDirectory) ListByRoles(_ context.Context, roles ...domain.Role) ([]domain.User, error) {
	var result []domain.User
	for _, user := range d.users {
		for _, role := range roles {
			if user.Role == role {
				result = append(result, user)
				break
			}
		}
	}
	return result, nil
}

func (d *memUserDirectory) FirstByRole(ctx context.Context, role domain.Role) (*domain.User, error) {
	users, _ := d.ListByRoles(ctx, role)
	if len(users) == 0 {
		return nil, pgx.ErrNoRows
	}
	u := users[0]
	return &u, nil
}

// memNotificationRepo satisfies repository.NotificationRepository.
type memNotificationRepo struct {
	mu        sync.Mutex
	seq       int
	items     []domain.Notification
	failWith  error
	baseClock time.Time
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{baseClock: time.Now()}
}

func (r *memNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.seq++
	n.ID = fmt.Sprintf("n-%d", r.seq)
	n.IsRead = false
	n.CreatedAt = r.baseClock.Add(time.Duration(r.seq) * time.Millisecond)
	r.items = append(r.items, *n)
	return nil
}

func (r *memNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matches := r.matching(userID, unreadOnly)
	if offset >= len(matches) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

func (r *memNotificationRepo) CountByUser(_ context.Context, userID string, unreadOnly bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matching(userID, unreadOnly)), nil
}

// matching returns the user's notifications newest-first.
func (r *memNotificationRepo) matching(userID string, unreadOnly bool) []domain.Notification {
	var result []domain.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		n := r.items[i]
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, n)
	}
	return result
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id, userID string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].IsRead = true
			n := r.items[i]
			return &n, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].IsRead {
			r.items[i].IsRead = true
			count++
		}
	}
	return count, nil
}

func (r *memNotificationRepo) Delete(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memNotificationRepo) forUser(userID string) []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result
}

// memTicketRepo satisfies repository.TicketRepository.
type memTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("t-%d", r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *memTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if matchesTicketFilter(ticket, filter) {
			result = append(result, ticket)
		}
	}
	return result, nil
}

func (r *memTicketRepo) CountWithFilter(_ context.Context, filter repository.TicketFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, ticket := range r.tickets {
		if matchesTicketFilter(ticket, filter) {
			count++
		}
	}
	return count, nil
}

func matchesTicketFilter(ticket domain.Ticket, filter repository.TicketFilter) bool {
	if filter.ReporterID != nil && ticket.ReporterID != *filter.ReporterID {
		return false
	}
	if filter.AssigneeID != nil && (ticket.AssigneeID == nil || *ticket.AssigneeID != *filter.AssigneeID) {
		return false
	}
	return true
}

func (r *memTicketRepo) AssignedStatusCounts(_ context.Context, assigneeID string) ([]repository.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, ticket := range r.tickets {
		if ticket.AssigneeID != nil && *ticket.AssigneeID == assigneeID {
			counts[string(ticket.Status)]++
		}
	}
	var result []repository.StatusCount
	for key, count := range counts {
		result = append(result, repository.StatusCount{Key: key, Count: count})
	}
	return result, nil
}

func (r *memTicketRepo) CountsBy(_ context.Context, column string) ([]repository.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, ticket := range r.tickets {
		switch column {
		case "status":
			counts[string(ticket.Status)]++
		case "priority":
			counts[string(ticket.Priority)]++
		case "category":
			key := "Uncategorized"
			if ticket.Category != nil {
				key = *ticket.Category
			}
			counts[key]++
		}
	}
	var result []repository.StatusCount
	for key, count := range counts {
		result = append(result, repository.StatusCount{Key: key, Count: count})
	}
	return result, nil
}

// memCommentRepo satisfies repository.CommentRepository.
type memCommentRepo struct {
	mu       sync.Mutex
	seq      int
	comments []domain.Comment
}

func (r *memCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	comment.ID = fmt.Sprintf("c-%d", r.seq)
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *memCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

// recordingMail satisfies notify.EmailTransport and captures sends.
type recordingMail struct {
	mu    sync.Mutex
	sends []sentMail
	fail  error
}

type sentMail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

func (m *recordingMail) Send(to, subject, htmlBody, textBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sends = append(m.sends, sentMail{To: to, Subject: subject, HTML: htmlBody, Text: textBody})
	return nil
}

func (m *recordingMail) sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail{}, m.sends...)
}

// memUserRepo satisfies repository.UserRepository for the auth and
// profile tests.
type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]domain.User
}

func newMemUserRepo(users ...domain.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]domain.User)}
	for _, user := range users {
		r.users[user.ID] = user
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("u-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) ListByRoles(_ context.Context, roles ...domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		for _, role := range roles {
			if user.Role == role {
				result = append(result, user)
				break
			}
		}
	}
	return result, nil
}

func (r *memUserRepo) FirstByRole(ctx context.Context, role domain.Role) (*domain.User, error) {
	users, _ := r.ListByRoles(ctx, role)
	if len(users) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &users[0], nil
}

func (r *memUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		result = append(result, user)
	}
	return result, nil
}

func (r *memUserRepo) Count(ctx context.Context, filter repository.UserFilter) (int, error) {
	users, _ := r.List(ctx, filter)
	return len(users), nil
}
