package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/it-tracker/internal/api/dto"
	apihttp "github.com/spec-kit/it-tracker/internal/api/http"
	"github.com/spec-kit/it-tracker/internal/api/http/handlers"
	"github.com/spec-kit/it-tracker/internal/auth"
	"github.com/spec-kit/it-tracker/internal/domain"
	"github.com/spec-kit/it-tracker/internal/observability"
	"github.com/spec-kit/it-tracker/internal/repository"
	"github.com/spec-kit/it-tracker/internal/service"
)

type stubUserRepo struct {
	users map[string]domain.User
}

func (r *stubUserRepo) Create(context.Context, *domain.User) error { return nil }
func (r *stubUserRepo) Update(context.Context, *domain.User) error { return nil }

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *stubUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) ListByRoles(context.Context, ...domain.Role) ([]domain.User, error) {
	return nil, nil
}

func (r *stubUserRepo) FirstByRole(context.Context, domain.Role) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) List(context.Context, repository.UserFilter) ([]domain.User, error) {
	return nil, nil
}

func (r *stubUserRepo) Count(context.Context, repository.UserFilter) (int, error) {
	return 0, nil
}

type stubNotificationRepo struct {
	items []domain.Notification
}

func (r *stubNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	n.ID = fmt.Sprintf("n-%d", len(r.items)+1)
	r.items = append(r.items, *n)
	return nil
}

func (r *stubNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	var matches []domain.Notification
	for i := len(r.items) - 1; i >= 0; i-- {
		n := r.items[i]
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		matches = append(matches, n)
	}
	if offset >= len(matches) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

func (r *stubNotificationRepo) CountByUser(_ context.Context, userID string, unreadOnly bool) (int, error) {
	count := 0
	for _, n := range r.items {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			count++
		}
	}
	return count, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id, userID string) (*domain.Notification, error) {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].IsRead = true
			n := r.items[i]
			return &n, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var count int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].IsRead {
			r.items[i].IsRead = true
			count++
		}
	}
	return count, nil
}

func (r *stubNotificationRepo) Delete(_ context.Context, id, userID string) error {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

// newTestApp mounts the notification routes behind real auth middleware
// and the global error handler, mirroring production wiring.
func newTestApp(t *testing.T, repo *stubNotificationRepo) (*fiber.App, string) {
	t.Helper()

	users := &stubUserRepo{users: map[string]domain.User{
		"u-1": {ID: "u-1", Email: "reporter@example.com", Role: domain.RoleUser},
	}}
	tokens := auth.NewTokenManager("test-secret", 60)
	token, _, err := tokens.GenerateToken("u-1", "reporter@example.com", domain.RoleUser)
	require.NoError(t, err)

	app := fiber.New()
	apihttp.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	handler := handlers.NewNotificationsHandler(
		service.NewNotificationService(repo, service.NewUnreadCache(nil)),
	)
	authMW := auth.NewMiddleware(tokens, users)

	group := app.Group("/api/notifications", authMW.Handle)
	group.Get("/", handler.List)
	group.Get("/unread-count", handler.UnreadCount)
	group.Put("/read-all", handler.MarkAllRead)
	group.Put("/:id/read", handler.MarkRead)
	group.Delete("/:id", handler.Delete)

	return app, token
}

func seedStubNotifications(repo *stubNotificationRepo, userID string, count int) {
	for i := 0; i < count; i++ {
		_ = repo.Create(context.Background(), &domain.Notification{
			UserID:  userID,
			Type:    domain.NotificationTicketCreated,
			Title:   "New Ticket Created",
			Message: fmt.Sprintf("New ticket #%d: test", i+1),
		})
	}
}

func doRequest(t *testing.T, app *fiber.App, method, target, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestListNotificationsEnvelope(t *testing.T) {
	repo := &stubNotificationRepo{}
	app, token := newTestApp(t, repo)
	seedStubNotifications(repo, "u-1", 25)

	resp := doRequest(t, app, http.MethodGet, "/api/notifications/?page=2&limit=10", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.NotificationListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Notifications, 10)
	assert.Equal(t, 2, body.Pagination.Page)
	assert.Equal(t, 25, body.Pagination.Total)
	assert.Equal(t, 3, body.Pagination.Pages)
	// Newest first: page 2 of 25 starts at the 11th most recent row.
	assert.Equal(t, "n-15", body.Notifications[0].ID)
}

func TestListNotificationsRequiresAuth(t *testing.T) {
	repo := &stubNotificationRepo{}
	app, _ := newTestApp(t, repo)

	resp := doRequest(t, app, http.MethodGet, "/api/notifications/", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
}

func TestMarkReadUnknownIDReturnsNotFound(t *testing.T) {
	repo := &stubNotificationRepo{}
	app, token := newTestApp(t, repo)

	resp := doRequest(t, app, http.MethodPut, "/api/notifications/n-404/read", token)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Contains(t, body.Error.Message, "notification")
}

func TestUnreadCountEndpoint(t *testing.T) {
	repo := &stubNotificationRepo{}
	app, token := newTestApp(t, repo)
	seedStubNotifications(repo, "u-1", 3)
	seedStubNotifications(repo, "u-2", 2)

	resp := doRequest(t, app, http.MethodGet, "/api/notifications/unread-count", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 3, body.Count)
}

func TestMarkAllReadEndpoint(t *testing.T) {
	repo := &stubNotificationRepo{}
	app, token := newTestApp(t, repo)
	seedStubNotifications(repo, "u-1", 2)

	resp := doRequest(t, app, http.MethodPut, "/api/notifications/read-all", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/notifications/unread-count", token)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Zero(t, body.Count)
}
