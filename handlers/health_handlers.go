package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthCheck godoc
// @Summary Health check
// @Description Reports whether the content store answers.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} SuccessResponse
// @Router /health [get]
func (h *ApplicationHandler) HealthCheck(c *fiber.Ctx) error {
	var err error
	if h.Health != nil {
		err = h.Health.Probe(c.UserContext())
	} else {
		err = h.Repo.Ping(c.UserContext())
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "error",
			"message": "Content store unreachable",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"message": "API Gateway is healthy",
	})
}
