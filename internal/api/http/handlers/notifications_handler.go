package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-tracker/internal/api/dto"
	"github.com/spec-kit/it-tracker/internal/auth"
	"github.com/spec-kit/it-tracker/internal/service"
	"github.com/spec-kit/it-tracker/pkg/util"
)

// NotificationsHandler exposes the recipient-facing notification endpoints.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List GET /api/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	page := positiveQueryInt(c, "page", 1)
	limit := positiveQueryInt(c, "limit", 20)
	unreadOnly := c.Query("unreadOnly") == "true"

	items, total, err := h.notifications.List(c.Context(), user.ID, page, limit, unreadOnly)
	if err != nil {
		return err
	}

	responses := make([]dto.NotificationResponse, 0, len(items))
	for i := range items {
		responses = append(responses, dto.NotificationFromDomain(&items[i]))
	}
	return c.JSON(dto.NotificationListResponse{
		Notifications: responses,
		Pagination:    dto.NewPagination(page, limit, total),
	})
}

// MarkRead PUT /api/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	n, err := h.notifications.MarkRead(c.Context(), c.Params("id"), user.ID)
	if err != nil {
		return notificationNotFound(err)
	}
	return c.JSON(fiber.Map{
		"message":      "Notification marked as read",
		"notification": dto.NotificationFromDomain(n),
	})
}

// MarkAllRead PUT /api/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	if _, err := h.notifications.MarkAllRead(c.Context(), user.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}

// UnreadCount GET /api/notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	count, err := h.notifications.UnreadCount(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"count": count})
}

// Delete DELETE /api/notifications/:id.
func (h *NotificationsHandler) Delete(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	if err := h.notifications.Delete(c.Context(), c.Params("id"), user.ID); err != nil {
		return notificationNotFound(err)
	}
	return c.JSON(fiber.Map{"message": "Notification deleted successfully"})
}

func notificationNotFound(err error) error {
	if de := util.ToDomainError(err); de.HTTPStatus == http.StatusNotFound {
		return util.NewNotFound("notification", nil)
	}
	return err
}

// positiveQueryInt coerces a query parameter to a positive integer,
// falling back to the default on absent or invalid input.
func positiveQueryInt(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
