package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"clinic-console/internal/config"
	"clinic-console/internal/pkg/response"
)

// pinger is implemented by snapshot stores backed by a server
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	deps *Deps
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(deps *Deps) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// HealthCheck reports the state of the console and its optional stores
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	checks := fiber.Map{
		"console":   "healthy",
		"database":  "disabled",
		"snapshots": "memory",
	}
	healthy := true

	if h.deps.Config.Database.Enabled {
		checks["database"] = "healthy"
		if err := config.HealthCheck(c.Context()); err != nil {
			checks["database"] = "unhealthy"
			healthy = false
		}
	}

	if p, ok := h.deps.Snapshots.(pinger); ok {
		checks["snapshots"] = "healthy"
		if err := p.Ping(c.Context()); err != nil {
			checks["snapshots"] = "unhealthy"
			healthy = false
		}
	}

	data := fiber.Map{
		"mode":     h.deps.Config.AppMode,
		"checks":   checks,
		"previews": h.deps.Previews.Len(),
	}
	if !healthy {
		return response.Error(c, fiber.StatusServiceUnavailable, "degraded", data)
	}
	return response.Success(c, "ok", data)
}
