package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/it-tracker/internal/api/http/handlers"
	"github.com/spec-kit/it-tracker/internal/auth"
	"github.com/spec-kit/it-tracker/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Put("/change-password", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/stats/overview", auth.RequireRole(domain.RoleAgent, domain.RoleAdmin), cfg.Tickets.Stats)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Update)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)

	notifications := api.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Put("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Put("/:id/read", cfg.Notifications.MarkRead)
	notifications.Delete("/:id", cfg.Notifications.Delete)

	users := api.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/agents", cfg.Users.Agents)
	users.Get("/", auth.RequireRole(domain.RoleAdmin), cfg.Users.List)
	users.Get("/:id/stats", cfg.Users.Stats)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id/role", auth.RequireRole(domain.RoleAdmin), cfg.Users.UpdateRole)
	users.Put("/:id", cfg.Users.UpdateProfile)
}
