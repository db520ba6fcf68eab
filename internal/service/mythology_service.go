package service

import (
	"context"
	"encoding/json"

	"codex/internal/cache"
	"codex/internal/middleware"
	"codex/internal/models"
	"codex/internal/repository"
	"codex/internal/validation"

	"github.com/redis/go-redis/v9"
)

// MythologyService provides mythology world business logic.
type MythologyService struct {
	mythologyRepo repository.MythologyRepository
}

// NewMythologyService returns a new MythologyService.
func NewMythologyService(mythologyRepo repository.MythologyRepository) *MythologyService {
	return &MythologyService{mythologyRepo: mythologyRepo}
}

// MythologyInput carries the mutable fields of a mythology world.
type MythologyInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
	IsPublic    *bool  `json:"is_public"`
}

// Create validates and persists a new mythology world owned by userID.
func (s *MythologyService) Create(ctx context.Context, userID uint, input MythologyInput) (*models.Mythology, error) {
	if input.Name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if err := validation.ValidateMythologySlug(input.Slug); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	mythology := &models.Mythology{
		UserID:      userID,
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		Theme:       input.Theme,
		IsPublic:    true,
	}
	if input.IsPublic != nil {
		mythology.IsPublic = *input.IsPublic
	}

	if err := s.mythologyRepo.Create(ctx, mythology); err != nil {
		return nil, err
	}
	return mythology, nil
}

// Update applies input to a mythology owned by userID.
func (s *MythologyService) Update(ctx context.Context, userID, mythologyID uint, input MythologyInput) (*models.Mythology, error) {
	mythology, err := s.mythologyRepo.GetByID(ctx, mythologyID)
	if err != nil {
		return nil, err
	}
	if mythology.UserID != userID {
		return nil, models.NewForbiddenError("You can only update your own mythologies")
	}

	if input.Name != "" {
		mythology.Name = input.Name
	}
	if input.Slug != "" && input.Slug != mythology.Slug {
		if err := validation.ValidateMythologySlug(input.Slug); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		mythology.Slug = input.Slug
	}
	if input.Description != "" {
		mythology.Description = input.Description
	}
	if input.Theme != "" {
		mythology.Theme = input.Theme
	}
	if input.IsPublic != nil {
		mythology.IsPublic = *input.IsPublic
	}

	if err := s.mythologyRepo.Update(ctx, mythology); err != nil {
		return nil, err
	}

	cache.InvalidateMythology(ctx, mythology.ID, mythology.Slug)
	return mythology, nil
}

// Delete removes a mythology owned by userID.
func (s *MythologyService) Delete(ctx context.Context, userID, mythologyID uint) error {
	mythology, err := s.mythologyRepo.GetByID(ctx, mythologyID)
	if err != nil {
		return err
	}
	if mythology.UserID != userID {
		return models.NewForbiddenError("You can only delete your own mythologies")
	}

	if err := s.mythologyRepo.Delete(ctx, mythologyID); err != nil {
		return err
	}

	cache.InvalidateMythology(ctx, mythology.ID, mythology.Slug)
	return nil
}

// GetByID returns a mythology by id.
func (s *MythologyService) GetByID(ctx context.Context, id uint) (*models.Mythology, error) {
	return s.mythologyRepo.GetByID(ctx, id)
}

// GetByUser returns all mythologies owned by userID.
func (s *MythologyService) GetByUser(ctx context.Context, userID uint) ([]models.Mythology, error) {
	return s.mythologyRepo.GetByUser(ctx, userID)
}

// ListPublic returns public mythologies, paginated.
func (s *MythologyService) ListPublic(ctx context.Context, limit, offset int) ([]models.Mythology, error) {
	return s.mythologyRepo.ListPublic(ctx, limit, offset)
}

// GetByIDCached returns a mythology by id, serving from Redis when possible.
// Cache errors degrade to a direct read.
func (s *MythologyService) GetByIDCached(ctx context.Context, id uint) (*models.Mythology, error) {
	rdb := cache.GetClient()
	if rdb == nil {
		return s.mythologyRepo.GetByID(ctx, id)
	}

	key := cache.MythologyByIDKey(id)
	if raw, err := rdb.Get(ctx, key).Result(); err == nil {
		var mythology models.Mythology
		if err := json.Unmarshal([]byte(raw), &mythology); err == nil {
			return &mythology, nil
		}
	} else if err != redis.Nil {
		middleware.Logger.WarnContext(ctx, "mythology cache read failed", "error", err)
	}

	mythology, err := s.mythologyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(mythology); err == nil {
		if err := rdb.Set(ctx, key, raw, cache.MythologyTTL).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "mythology cache write failed", "error", err)
		}
	}

	return mythology, nil
}
