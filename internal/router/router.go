package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/campus-complaint-api/internal/config"
	"github.com/noah-isme/campus-complaint-api/internal/handler"
	"github.com/noah-isme/campus-complaint-api/internal/middleware"
	"github.com/noah-isme/campus-complaint-api/internal/models"
	"github.com/noah-isme/campus-complaint-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler              *handler.AuthHandler
	CategoryHandler          *handler.CategoryHandler
	StatusHandler            *handler.StatusHandler
	ComplaintHandler         *handler.ComplaintHandler
	ComplaintResponseHandler *handler.ComplaintResponseHandler
	AdminUserHandler         *handler.AdminUserHandler
	AdminDashboardHandler    *handler.AdminDashboardHandler
	AdminActivityHandler     *handler.AdminActivityHandler
	SeedHandler              *handler.SeedHandler
	JWTMiddleware            fiber.Handler
	AuthRateLimiter          fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	var authGuards []fiber.Handler
	if deps.AuthRateLimiter != nil {
		authGuards = append(authGuards, deps.AuthRateLimiter)
	}
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterPublic(api, authGuards...)
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Fiber matches in registration order, so the public routes above answer
	// before this group's JWT guard runs.
	protected := api.Group("", jwtMiddleware)

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(protected)
	}
	if deps.ComplaintHandler != nil {
		deps.ComplaintHandler.Register(protected.Group("/complaints"))
	}
	if deps.ComplaintResponseHandler != nil {
		deps.ComplaintResponseHandler.Register(protected.Group("/complaints/:id/responses"))
	}
	if deps.CategoryHandler != nil {
		deps.CategoryHandler.Register(protected.Group("/categories"))
	}
	if deps.StatusHandler != nil {
		deps.StatusHandler.Register(protected.Group("/statuses"))
	}

	admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	if deps.AdminDashboardHandler != nil {
		deps.AdminDashboardHandler.Register(admin)
	}
	if deps.AdminActivityHandler != nil {
		deps.AdminActivityHandler.Register(admin.Group("/activities"))
	}
	if deps.AdminUserHandler != nil {
		deps.AdminUserHandler.Register(admin.Group("/users"))
	}
	if deps.CategoryHandler != nil {
		deps.CategoryHandler.RegisterAdmin(admin.Group("/categories"))
	}
	if deps.StatusHandler != nil {
		deps.StatusHandler.RegisterAdmin(admin.Group("/statuses"))
	}
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(admin.Group("/seed"))
	}
}
