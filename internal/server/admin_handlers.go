package server

import (
	"codex/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/admin/feature-flags
// @Summary Inspect the feature flag configuration
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/feature-flags [get]
// @Security BearerAuth
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	return c.JSON(fiber.Map{
		"raw":   s.featureFlags.Raw(),
		"flags": s.featureFlags.Snapshot(userID),
	})
}

// GetAdminCrossoverRequests handles GET /api/admin/crossover-requests
// @Summary List crossover requests across all users, optionally by status
// @Tags admin
// @Produce json
// @Param status query string false "Filter by status (pending, accepted, declined, cancelled)"
// @Param limit query int false "Max results (default 50)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/crossover-requests [get]
// @Security BearerAuth
func (s *Server) GetAdminCrossoverRequests(c *fiber.Ctx) error {
	ctx := c.Context()
	p := parsePagination(c, 50)

	status := models.CrossoverRequestStatus(c.Query("status"))

	requests, err := s.crossoverService.ListByStatus(ctx, status, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"requests": requests})
}
