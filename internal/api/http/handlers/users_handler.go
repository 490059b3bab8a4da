package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-tracker/internal/api/dto"
	"github.com/spec-kit/it-tracker/internal/auth"
	"github.com/spec-kit/it-tracker/internal/domain"
	"github.com/spec-kit/it-tracker/internal/repository"
	"github.com/spec-kit/it-tracker/internal/service"
	"github.com/spec-kit/it-tracker/pkg/util"
)

// UsersHandler exposes profiles, admin user management and the
// assignee roster.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List GET /api/users (admin only).
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page := positiveQueryInt(c, "page", 1)
	limit := positiveQueryInt(c, "limit", 10)

	filter := repository.UserFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if v := c.Query("role"); v != "" {
		role := domain.Role(v)
		filter.Role = &role
	}
	if v := c.Query("department"); v != "" {
		filter.Department = &v
	}
	if v := c.Query("search"); v != "" {
		filter.SearchTerm = &v
	}

	users, total, err := h.users.List(c.Context(), filter)
	if err != nil {
		return err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.UserFromDomain(&users[i]))
	}
	return c.JSON(fiber.Map{
		"users":      items,
		"pagination": dto.NewPagination(page, limit, total),
	})
}

// Agents GET /api/users/agents.
func (h *UsersHandler) Agents(c *fiber.Ctx) error {
	agents, err := h.users.ListAssignable(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(agents))
	for i := range agents {
		items = append(items, dto.UserFromDomain(&agents[i]))
	}
	return c.JSON(fiber.Map{"agents": items})
}

// Get GET /api/users/:id (self or admin).
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.CurrentUser(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	user, err := h.users.GetProfile(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": dto.UserFromDomain(user)})
}

// UpdateProfile PUT /api/users/:id (self or admin).
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, ok := auth.CurrentUser(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.UpdateProfile(c.Context(), actor, c.Params("id"), service.ProfileUpdateInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    dto.UserFromDomain(user),
	})
}

// Stats GET /api/users/:id/stats (self or admin).
func (h *UsersHandler) Stats(c *fiber.Ctx) error {
	actor, ok := auth.CurrentUser(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	stats, err := h.users.Stats(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}

	byStatus := make([]fiber.Map, 0, len(stats.AssignedByStatus))
	for _, sc := range stats.AssignedByStatus {
		byStatus = append(byStatus, fiber.Map{"status": sc.Key, "count": sc.Count})
	}
	return c.JSON(fiber.Map{
		"createdTickets":   stats.CreatedTickets,
		"assignedTickets":  stats.AssignedTickets,
		"assignedByStatus": byStatus,
	})
}

// UpdateRole PUT /api/users/:id/role (admin only).
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	user, err := h.users.UpdateRole(c.Context(), c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User role updated successfully",
		"user":    dto.UserFromDomain(user),
	})
}
