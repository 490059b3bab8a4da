package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-tracker/internal/api/dto"
	"github.com/spec-kit/it-tracker/internal/auth"
	"github.com/spec-kit/it-tracker/internal/service"
	"github.com/spec-kit/it-tracker/pkg/util"
)

// AuthHandler exposes registration and login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	user, token, exp, err := h.auth.Register(c.Context(), service.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: req.Department,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    dto.UserFromDomain(user),
		"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return util.NewValidationError("email and password required", nil)
	}

	user, token, exp, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user": dto.UserFromDomain(user),
		"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// ChangePassword handles PUT /api/auth/change-password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	if err := h.auth.ChangePassword(c.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"user": dto.UserFromDomain(user)})
}
