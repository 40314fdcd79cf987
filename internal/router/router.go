package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/placement-cell/drive-api/internal/config"
	"github.com/placement-cell/drive-api/internal/handler"
	"github.com/placement-cell/drive-api/internal/middleware"
	"github.com/placement-cell/drive-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DriveHandler  *handler.DriveHandler
	RoundHandler  *handler.RoundHandler
	OfferHandler  *handler.OfferHandler
	JWTMiddleware fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health, metrics & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	drives := app.Group("/api/v2/drives", jwtMiddleware)

	// Offer responses come from candidates; everything else is restricted to
	// placement staff.
	if deps.OfferHandler != nil {
		candidate := drives.Group("", middleware.RateLimit("offer_respond", 20, time.Minute))
		deps.OfferHandler.RegisterCandidate(candidate)
	}

	staff := drives.Group("", middleware.RequireRole("admin", "coordinator"))
	if deps.DriveHandler != nil {
		deps.DriveHandler.Register(staff)
	}
	if deps.RoundHandler != nil {
		deps.RoundHandler.Register(staff)
	}
	if deps.OfferHandler != nil {
		deps.OfferHandler.RegisterAdmin(staff)
	}
}
