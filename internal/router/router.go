package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/excellence-hub/excellence-forms-api/internal/config"
	"github.com/excellence-hub/excellence-forms-api/internal/handler"
	"github.com/excellence-hub/excellence-forms-api/internal/middleware"
	"github.com/excellence-hub/excellence-forms-api/internal/models"
	"github.com/excellence-hub/excellence-forms-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	FormHandler         *handler.FormHandler
	SectionHandler      *handler.SectionHandler
	FieldHandler        *handler.FieldHandler
	InstanceHandler     *handler.InstanceHandler
	PermissionHandler   *handler.PermissionHandler
	StatisticsHandler   *handler.StatisticsHandler
	NotificationHandler *handler.NotificationHandler
	AuditHandler        *handler.AuditHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Authentication (public, rate limited)
	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 10, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	// Forms and their structure
	if deps.FormHandler != nil {
		forms := api.Group("/forms", jwtMiddleware)
		deps.FormHandler.Register(forms)
	}
	if deps.SectionHandler != nil {
		sections := api.Group("/sections", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.SectionHandler.Register(sections)
	}
	if deps.FieldHandler != nil {
		fields := api.Group("/fields", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.FieldHandler.Register(fields)
	}

	// Instances and their workflow
	if deps.InstanceHandler != nil {
		instances := api.Group("/instances", jwtMiddleware)
		deps.InstanceHandler.Register(instances)
	}

	// Section permissions
	if deps.PermissionHandler != nil {
		permissions := api.Group("/permissions", jwtMiddleware, middleware.RequireRole(models.RoleAdmin, models.RoleCommitteeMember))
		deps.PermissionHandler.Register(permissions)
	}

	// Statistics
	if deps.StatisticsHandler != nil {
		statistics := api.Group("/statistics", jwtMiddleware)
		deps.StatisticsHandler.Register(statistics)
	}

	// Notifications for the signed-in user
	if deps.NotificationHandler != nil {
		notifications := api.Group("/notifications", jwtMiddleware)
		deps.NotificationHandler.Register(notifications)
	}

	// Audit trail
	if deps.AuditHandler != nil {
		audit := api.Group("/audit", jwtMiddleware, middleware.RequireRole(models.RoleAdmin, models.RoleCommitteeMember))
		deps.AuditHandler.Register(audit)
	}
}
