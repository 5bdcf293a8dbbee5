package handlers

import (
	"nja-ledger/internal/config"
	"nja-ledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles liveness and readiness probes
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Root returns basic service information
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return response.Success(c, "nja-ledger API", fiber.Map{
		"service": "nja-ledger",
		"mode":    config.AppConfig.AppMode,
	})
}

// HealthCheck verifies the database connection is alive
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	if err := config.HealthCheck(); err != nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "database unavailable")
	}
	return response.Success(c, "healthy", fiber.Map{"database": "up"})
}
