package server

import (
	"codex/internal/models"

	"github.com/gofiber/fiber/v2"
)

type figureInput struct {
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// CreateFigure handles POST /api/mythologies/:id/figures
// @Summary Add a character or creature to a mythology you own
// @Tags figures
// @Accept json
// @Produce json
// @Param id path int true "Mythology ID"
// @Param figure body figureInput true "Figure details"
// @Success 201 {object} models.Figure
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /mythologies/{id}/figures [post]
// @Security BearerAuth
func (s *Server) CreateFigure(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	mythologyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input figureInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if input.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}
	kind := models.FigureKind(input.Kind)
	if !models.ValidFigureKind(kind) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Kind must be character or creature"))
	}

	mythology, err := s.mythologyRepo.GetByID(ctx, mythologyID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if mythology.UserID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only add figures to your own mythology"))
	}

	figure := &models.Figure{
		MythologyID: mythologyID,
		Kind:        kind,
		Name:        input.Name,
		Title:       input.Title,
		Domain:      input.Domain,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
	if err := s.figureRepo.Create(ctx, figure); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(figure)
}

// GetFigures handles GET /api/mythologies/:id/figures
// @Summary List the figures of a mythology
// @Tags figures
// @Produce json
// @Param id path int true "Mythology ID"
// @Param kind query string false "Filter by kind (character or creature)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /mythologies/{id}/figures [get]
func (s *Server) GetFigures(c *fiber.Ctx) error {
	ctx := c.Context()

	mythologyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	kind := models.FigureKind(c.Query("kind"))
	if kind != "" && !models.ValidFigureKind(kind) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Kind must be character or creature"))
	}

	mythology, err := s.mythologyRepo.GetByID(ctx, mythologyID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if !mythology.IsPublic && !s.callerOwns(c, mythology.UserID) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Mythology", mythologyID))
	}

	figures, err := s.figureRepo.ListByMythology(ctx, mythologyID, kind)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"figures": figures})
}

// UpdateFigure handles PUT /api/mythologies/:id/figures/:figureId
// @Summary Update a figure in a mythology you own
// @Tags figures
// @Accept json
// @Produce json
// @Param id path int true "Mythology ID"
// @Param figureId path int true "Figure ID"
// @Param figure body figureInput true "Fields to update"
// @Success 200 {object} models.Figure
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /mythologies/{id}/figures/{figureId} [put]
// @Security BearerAuth
func (s *Server) UpdateFigure(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	mythologyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	figureID, err := s.parseID(c, "figureId")
	if err != nil {
		return nil
	}

	figure, err := s.loadOwnedFigure(c, mythologyID, figureID, userID)
	if figure == nil {
		return err
	}

	var input figureInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if input.Kind != "" {
		kind := models.FigureKind(input.Kind)
		if !models.ValidFigureKind(kind) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Kind must be character or creature"))
		}
		figure.Kind = kind
	}
	if input.Name != "" {
		figure.Name = input.Name
	}
	if input.Title != "" {
		figure.Title = input.Title
	}
	if input.Domain != "" {
		figure.Domain = input.Domain
	}
	if input.Description != "" {
		figure.Description = input.Description
	}
	if input.ImageURL != "" {
		figure.ImageURL = input.ImageURL
	}

	if err := s.figureRepo.Update(ctx, figure); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(figure)
}

// DeleteFigure handles DELETE /api/mythologies/:id/figures/:figureId
// @Summary Remove a figure from a mythology you own
// @Tags figures
// @Produce json
// @Param id path int true "Mythology ID"
// @Param figureId path int true "Figure ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /mythologies/{id}/figures/{figureId} [delete]
// @Security BearerAuth
func (s *Server) DeleteFigure(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	mythologyID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	figureID, err := s.parseID(c, "figureId")
	if err != nil {
		return nil
	}

	figure, err := s.loadOwnedFigure(c, mythologyID, figureID, userID)
	if figure == nil {
		return err
	}

	if err := s.figureRepo.Delete(ctx, figureID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// loadOwnedFigure fetches a figure and verifies it belongs to the given
// mythology and that the caller owns that mythology. On failure it writes the
// error response and returns (nil, nil).
func (s *Server) loadOwnedFigure(c *fiber.Ctx, mythologyID, figureID, userID uint) (*models.Figure, error) {
	ctx := c.Context()

	figure, err := s.figureRepo.GetByID(ctx, figureID)
	if err != nil {
		return nil, models.RespondWithAppError(c, err)
	}
	if figure.MythologyID != mythologyID {
		return nil, models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Figure", figureID))
	}

	mythology, err := s.mythologyRepo.GetByID(ctx, mythologyID)
	if err != nil {
		return nil, models.RespondWithAppError(c, err)
	}
	if mythology.UserID != userID {
		return nil, models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only manage figures in your own mythology"))
	}

	return figure, nil
}
