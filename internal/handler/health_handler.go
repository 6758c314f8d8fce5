package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger is an interface for health check ping operations.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	pool   Pinger
	broker Pinger
}

// NewHealthHandler creates a new HealthHandler. broker may be nil when the
// change feed runs in-process.
func NewHealthHandler(pool Pinger, broker Pinger) *HealthHandler {
	return &HealthHandler{pool: pool, broker: broker}
}

// Check pings the database and, when configured, the change feed.
// Returns 200 OK with {"status": "healthy"} when the database is reachable.
// Returns 503 Service Unavailable with {"status": "unhealthy", "error": "..."} when it is not.
// An unreachable change feed only degrades the status: reads and writes still work,
// live streams stop updating.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.pool.Ping(c.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  "database connection failed",
		})
	}

	if h.broker != nil {
		if err := h.broker.Ping(c.Context()); err != nil {
			log.Warn().Err(err).Msg("health check degraded: change feed unreachable")
			return c.JSON(fiber.Map{
				"status": "degraded",
				"error":  "change feed connection failed",
			})
		}
	}

	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}
