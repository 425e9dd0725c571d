package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/acssjr/vizu/internal/session"
)

const apiVersion = "0.3.0"

// dependencyTimeout bounds the whole readiness check, Postgres and Redis
// together.
const dependencyTimeout = 3 * time.Second

type HealthHandler struct {
	pool     *pgxpool.Pool
	rdb      *redis.Client
	sessions *session.Registry
	startAt  time.Time
}

func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client, sessions *session.Registry) *HealthHandler {
	return &HealthHandler{
		pool:     pool,
		rdb:      rdb,
		sessions: sessions,
		startAt:  time.Now(),
	}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready. Postgres down means votes cannot be
// accepted, so the service reports unavailable; Redis down only degrades
// (caching and skip marks turn into no-ops) and keeps a 200.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), dependencyTimeout)
	defer cancel()

	dbCheck := h.checkDatabase(ctx)
	cacheCheck := h.checkCache(ctx)

	status := "healthy"
	httpStatus := fiber.StatusOK
	switch {
	case dbCheck["status"] != "up":
		status = "unavailable"
		httpStatus = fiber.StatusServiceUnavailable
	case cacheCheck["status"] == "down":
		status = "degraded"
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checks": fiber.Map{
			"database": dbCheck,
			"cache":    cacheCheck,
		},
		"sessions_live":  h.sessions.Len(),
		"uptime_seconds": int(time.Since(h.startAt).Seconds()),
		"version":        apiVersion,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) fiber.Map {
	start := time.Now()
	err := h.pool.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{"status": "down", "latency_ms": latency}
	}
	return fiber.Map{"status": "up", "latency_ms": latency}
}

func (h *HealthHandler) checkCache(ctx context.Context) fiber.Map {
	// A nil client is the configured-off state, not a failure.
	if h.rdb == nil {
		return fiber.Map{"status": "disabled"}
	}

	start := time.Now()
	err := h.rdb.Ping(ctx).Err()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return fiber.Map{"status": "down", "latency_ms": latency}
	}
	return fiber.Map{"status": "up", "latency_ms": latency}
}
