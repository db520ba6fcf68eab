package server

import (
	"codex/internal/models"
	"codex/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCrossoverRequest handles POST /api/crossovers/requests
// @Summary Send a crossover request
// @Description Propose an alliance, conflict, trade, or shared story between your mythology and another user's
// @Tags crossovers
// @Accept json
// @Produce json
// @Param request body object true "Crossover request details"
// @Success 201 {object} models.CrossoverRequest
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /crossovers/requests [post]
// @Security BearerAuth
func (s *Server) CreateCrossoverRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var body struct {
		RequesterMythologyID uint   `json:"requester_mythology_id"`
		TargetMythologyID    uint   `json:"target_mythology_id"`
		RequestType          string `json:"request_type"`
		Message              string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if body.RequesterMythologyID == 0 || body.TargetMythologyID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("requester_mythology_id and target_mythology_id are required"))
	}

	request, err := s.crossoverService.Create(ctx, userID, service.CreateCrossoverRequestInput{
		RequesterMythologyID: body.RequesterMythologyID,
		TargetMythologyID:    body.TargetMythologyID,
		RequestType:          models.CrossoverRequestType(body.RequestType),
		Message:              body.Message,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.publishUserEvent(request.TargetUserID, EventCrossoverRequestReceived, map[string]interface{}{
		"request_id":   request.ID,
		"request_type": request.RequestType,
		"requester_mythology": mythologySummaryPtr(request.RequesterMythology),
		"target_mythology":    mythologySummaryPtr(request.TargetMythology),
	})
	s.publishUserEvent(request.RequesterID, EventCrossoverRequestSent, map[string]interface{}{
		"request_id":   request.ID,
		"request_type": request.RequestType,
	})

	return c.Status(fiber.StatusCreated).JSON(request)
}

// GetIncomingCrossoverRequests handles GET /api/crossovers/requests
// @Summary List incoming pending crossover requests
// @Tags crossovers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /crossovers/requests [get]
// @Security BearerAuth
func (s *Server) GetIncomingCrossoverRequests(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	requests, err := s.crossoverService.GetIncoming(ctx, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"requests": requests})
}

// GetSentCrossoverRequests handles GET /api/crossovers/requests/sent
// @Summary List crossover requests you have sent
// @Tags crossovers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /crossovers/requests/sent [get]
// @Security BearerAuth
func (s *Server) GetSentCrossoverRequests(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	requests, err := s.crossoverService.GetSent(ctx, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"requests": requests})
}

// RespondToCrossoverRequest handles PATCH /api/crossovers/requests/:id
// @Summary Accept, decline, or cancel a crossover request
// @Description Accept and decline are for the recipient; cancel is for the requester. Accepting materializes an alliance or spawns a story draft.
// @Tags crossovers
// @Accept json
// @Produce json
// @Param id path int true "Crossover request ID"
// @Param request body object true "Action and optional response message"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /crossovers/requests/{id} [patch]
// @Security BearerAuth
func (s *Server) RespondToCrossoverRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	requestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var body struct {
		Action          string `json:"action"`
		ResponseMessage string `json:"response_message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	request, err := s.crossoverService.Respond(ctx, requestID, userID, body.Action, body.ResponseMessage)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.publishResolutionEvents(request)

	return c.JSON(fiber.Map{"request": request})
}

// publishResolutionEvents notifies the counterparty (and on acceptance, both
// parties) about a resolved request.
func (s *Server) publishResolutionEvents(request *models.CrossoverRequest) {
	payload := map[string]interface{}{
		"request_id":   request.ID,
		"request_type": request.RequestType,
		"status":       request.Status,
	}

	switch request.Status {
	case models.CrossoverRequestStatusAccepted:
		s.publishUserEvent(request.RequesterID, EventCrossoverRequestAccepted, payload)
		if request.RequestType == models.CrossoverRequestTypeStory {
			s.publishUserEvent(request.RequesterID, EventStoryDraftCreated, payload)
			s.publishUserEvent(request.TargetUserID, EventStoryDraftCreated, payload)
		} else {
			s.publishUserEvent(request.RequesterID, EventAllianceFormed, payload)
			s.publishUserEvent(request.TargetUserID, EventAllianceFormed, payload)
		}
	case models.CrossoverRequestStatusDeclined:
		s.publishUserEvent(request.RequesterID, EventCrossoverRequestDeclined, payload)
	case models.CrossoverRequestStatusCancelled:
		s.publishUserEvent(request.TargetUserID, EventCrossoverRequestCancelled, payload)
	}
}

// DeleteCrossoverRequest handles DELETE /api/crossovers/requests/:id
// @Summary Delete a resolved crossover request
// @Tags crossovers
// @Produce json
// @Param id path int true "Crossover request ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /crossovers/requests/{id} [delete]
// @Security BearerAuth
func (s *Server) DeleteCrossoverRequest(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	requestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.crossoverService.Delete(ctx, requestID, userID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetAlliances handles GET /api/crossovers/alliances
// @Summary List active mythology alliances
// @Description Lists alliances for your mythologies, or for a single mythology when mythology_id is given
// @Tags crossovers
// @Produce json
// @Param mythology_id query int false "Filter by mythology ID"
// @Success 200 {object} map[string]interface{}
// @Router /crossovers/alliances [get]
// @Security BearerAuth
func (s *Server) GetAlliances(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	mythologyID := c.QueryInt("mythology_id", 0)
	if mythologyID < 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid mythology ID"))
	}

	alliances, err := s.crossoverService.GetAlliances(ctx, userID, uint(mythologyID))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"alliances": alliances})
}

// GetCrossoverStories handles GET /api/crossovers/stories
// @Summary List crossover stories you co-author
// @Tags crossovers
// @Produce json
// @Param mythology_id query int false "Filter by mythology ID"
// @Success 200 {object} map[string]interface{}
// @Router /crossovers/stories [get]
// @Security BearerAuth
func (s *Server) GetCrossoverStories(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	mythologyID := c.QueryInt("mythology_id", 0)
	if mythologyID < 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid mythology ID"))
	}

	stories, err := s.crossoverService.GetStories(ctx, userID, uint(mythologyID))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"stories": stories})
}
