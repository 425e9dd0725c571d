package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/acssjr/vizu/internal/handler"
	"github.com/acssjr/vizu/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Photo  *handler.PhotoHandler
	Vote   *handler.VoteHandler
	Voter  *handler.VoterHandler
	Stats  *handler.StatsHandler
	Health *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(handler.MetricsMiddleware())

	// Health checks (before API group, no rate limits)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)

	// Prometheus metrics
	app.Get("/metrics", handler.MetricsHandler())

	// API routes
	api := app.Group("/api")

	// Photo routes (static /photos/next registered before the param route)
	api.Get("/photos/next", h.Photo.GetNext, middleware.NewNextPhotoRateLimiter().Handler())
	api.Get("/photos/:photoId", h.Photo.GetAggregate)

	// Vote routes
	api.Post("/votes", h.Vote.Submit, middleware.NewVoteSubmitRateLimiter().Handler())
	api.Post("/votes/skip", h.Vote.Skip, middleware.NewSkipRateLimiter().Handler())

	// Voter routes
	api.Get("/voters/:voterId", h.Voter.GetByVoterID)

	// Stats routes
	api.Get("/stats", h.Stats.GetStats, middleware.NewStatsRateLimiter().Handler())
}
