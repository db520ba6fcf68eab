package server

import (
	"codex/internal/models"
	"codex/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateMythology handles POST /api/mythologies
// @Summary Create a mythology world
// @Tags mythologies
// @Accept json
// @Produce json
// @Param mythology body service.MythologyInput true "Mythology details"
// @Success 201 {object} models.Mythology
// @Failure 400 {object} models.ErrorResponse
// @Router /mythologies [post]
// @Security BearerAuth
func (s *Server) CreateMythology(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var input service.MythologyInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	mythology, err := s.mythologyService.Create(ctx, userID, input)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(mythology)
}

// GetPublicMythologies handles GET /api/mythologies
// @Summary Browse public mythology worlds
// @Tags mythologies
// @Produce json
// @Param limit query int false "Max results (default 20)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /mythologies [get]
func (s *Server) GetPublicMythologies(c *fiber.Ctx) error {
	ctx := c.Context()
	p := parsePagination(c, 20)

	mythologies, err := s.mythologyService.ListPublic(ctx, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"mythologies": mythologies})
}

// GetMyMythologies handles GET /api/mythologies/mine
// @Summary List your mythology worlds
// @Tags mythologies
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /mythologies/mine [get]
// @Security BearerAuth
func (s *Server) GetMyMythologies(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	mythologies, err := s.mythologyService.GetByUser(ctx, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"mythologies": mythologies})
}

// GetMythology handles GET /api/mythologies/:id
// @Summary Get a mythology world
// @Tags mythologies
// @Produce json
// @Param id path int true "Mythology ID"
// @Success 200 {object} models.Mythology
// @Failure 404 {object} models.ErrorResponse
// @Router /mythologies/{id} [get]
func (s *Server) GetMythology(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	mythology, err := s.mythologyService.GetByID(ctx, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if !mythology.IsPublic && !s.callerOwns(c, mythology.UserID) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Mythology", id))
	}

	return c.JSON(mythology)
}

// GetMythologyCached handles GET /api/mythologies/:id/cached
// @Summary Get a mythology world, served from cache when warm
// @Tags mythologies
// @Produce json
// @Param id path int true "Mythology ID"
// @Success 200 {object} models.Mythology
// @Failure 404 {object} models.ErrorResponse
// @Router /mythologies/{id}/cached [get]
// @Security BearerAuth
func (s *Server) GetMythologyCached(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	mythology, err := s.mythologyService.GetByIDCached(ctx, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if !mythology.IsPublic && !s.callerOwns(c, mythology.UserID) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Mythology", id))
	}

	return c.JSON(mythology)
}

// UpdateMythology handles PUT /api/mythologies/:id
// @Summary Update a mythology world you own
// @Tags mythologies
// @Accept json
// @Produce json
// @Param id path int true "Mythology ID"
// @Param mythology body service.MythologyInput true "Fields to update"
// @Success 200 {object} models.Mythology
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /mythologies/{id} [put]
// @Security BearerAuth
func (s *Server) UpdateMythology(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input service.MythologyInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	mythology, err := s.mythologyService.Update(ctx, userID, id, input)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(mythology)
}

// DeleteMythology handles DELETE /api/mythologies/:id
// @Summary Delete a mythology world you own
// @Tags mythologies
// @Produce json
// @Param id path int true "Mythology ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /mythologies/{id} [delete]
// @Security BearerAuth
func (s *Server) DeleteMythology(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.mythologyService.Delete(ctx, userID, id); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// callerOwns reports whether the authenticated caller (if any) is ownerID.
func (s *Server) callerOwns(c *fiber.Ctx, ownerID uint) bool {
	userID, ok := c.Locals("userID").(uint)
	return ok && userID == ownerID
}
