package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-tracker/internal/api/dto"
	"github.com/spec-kit/it-tracker/internal/auth"
	"github.com/spec-kit/it-tracker/internal/domain"
	"github.com/spec-kit/it-tracker/internal/repository"
	"github.com/spec-kit/it-tracker/internal/service"
	"github.com/spec-kit/it-tracker/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// Create POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.Context(), user.ID, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Ticket created successfully",
		"ticket":  dto.TicketFromDomain(ticket),
	})
}

// List GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	if _, ok := auth.CurrentUser(c); !ok {
		return util.NewUnauthorized("authentication required")
	}

	page := positiveQueryInt(c, "page", 1)
	limit := positiveQueryInt(c, "limit", 10)

	filter := repository.TicketFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if v := c.Query("status"); v != "" {
		filter.Statuses = []domain.TicketStatus{domain.TicketStatus(v)}
	}
	if v := c.Query("priority"); v != "" {
		filter.Priorities = []domain.TicketPriority{domain.TicketPriority(v)}
	}
	if v := c.Query("assignee"); v != "" {
		filter.AssigneeID = &v
	}
	if v := c.Query("reporter"); v != "" {
		filter.ReporterID = &v
	}
	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}
	if v := c.Query("search"); v != "" {
		filter.SearchTerm = &v
	}

	tickets, total, err := h.tickets.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.TicketFromDomain(&tickets[i]))
	}
	return c.JSON(fiber.Map{
		"tickets":    items,
		"pagination": dto.NewPagination(page, limit, total),
	})
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	if _, ok := auth.CurrentUser(c); !ok {
		return util.NewUnauthorized("authentication required")
	}

	ticket, comments, err := h.tickets.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	commentItems := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		commentItems = append(commentItems, dto.CommentFromDomain(&comments[i]))
	}
	return c.JSON(fiber.Map{
		"ticket":   dto.TicketFromDomain(ticket),
		"comments": commentItems,
	})
}

// Update PUT /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.UpdateTicket(c.Context(), user, c.Params("id"), service.TicketUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Category:    req.Category,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Ticket updated successfully",
		"ticket":  dto.TicketFromDomain(ticket),
	})
}

// AddComment POST /api/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	comment, err := h.tickets.AddComment(c.Context(), user, c.Params("id"), req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Comment added successfully",
		"comment": dto.CommentFromDomain(comment),
	})
}

// Stats GET /api/tickets/stats/overview.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.tickets.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"statusStats":   statsRows(stats.ByStatus),
		"priorityStats": statsRows(stats.ByPriority),
		"categoryStats": statsRows(stats.ByCategory),
	})
}

func statsRows(counts []repository.StatusCount) []fiber.Map {
	rows := make([]fiber.Map, 0, len(counts))
	for _, sc := range counts {
		rows = append(rows, fiber.Map{"key": sc.Key, "count": sc.Count})
	}
	return rows
}
