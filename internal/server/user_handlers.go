package server

import (
	"codex/internal/cache"
	"codex/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get the authenticated user's profile
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
// @Security BearerAuth
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update the authenticated user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param profile body object true "Fields to update"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
// @Security BearerAuth
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var body struct {
		DisplayName *string `json:"display_name"`
		Avatar      *string `json:"avatar"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if body.DisplayName != nil {
		user.DisplayName = *body.DisplayName
	}
	if body.Avatar != nil {
		user.Avatar = *body.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return models.RespondWithAppError(c, err)
	}

	cache.InvalidateUser(ctx, userID)

	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
// @Security BearerAuth
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	ctx := c.Context()

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	mythologies, err := s.mythologyRepo.GetByUser(ctx, id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	// Public profile only exposes public worlds.
	publicMythologies := make([]models.Mythology, 0, len(mythologies))
	for _, m := range mythologies {
		if m.IsPublic {
			publicMythologies = append(publicMythologies, m)
		}
	}

	return c.JSON(fiber.Map{
		"id":           user.ID,
		"username":     user.Username,
		"display_name": user.DisplayName,
		"avatar":       user.Avatar,
		"mythologies":  publicMythologies,
	})
}

// CreateUser handles POST /api/users (admin only). Accounts are provisioned by
// an administrator; there is no self-serve signup.
// @Summary Provision a new user account
// @Tags users
// @Accept json
// @Produce json
// @Param user body object true "Account details"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /users [post]
// @Security BearerAuth
func (s *Server) CreateUser(c *fiber.Ctx) error {
	ctx := c.Context()

	var body struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"display_name"`
		IsAdmin     bool   `json:"is_admin"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if body.Username == "" || body.Email == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username and email are required"))
	}
	if len(body.Password) < 8 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Password must be at least 8 characters"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user := &models.User{
		Username:    body.Username,
		Email:       body.Email,
		Password:    string(hashed),
		DisplayName: body.DisplayName,
		IsAdmin:     body.IsAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}
