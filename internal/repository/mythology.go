package repository

import (
	"context"
	"errors"

	"codex/internal/models"

	"gorm.io/gorm"
)

// MythologyRepository defines the interface for mythology world data operations
type MythologyRepository interface {
	Create(ctx context.Context, mythology *models.Mythology) error
	GetByID(ctx context.Context, id uint) (*models.Mythology, error)
	GetBySlug(ctx context.Context, slug string) (*models.Mythology, error)
	GetByUser(ctx context.Context, userID uint) ([]models.Mythology, error)
	ListPublic(ctx context.Context, limit, offset int) ([]models.Mythology, error)
	Update(ctx context.Context, mythology *models.Mythology) error
	Delete(ctx context.Context, id uint) error
}

type mythologyRepository struct {
	db *gorm.DB
}

// NewMythologyRepository creates a new mythology repository
func NewMythologyRepository(db *gorm.DB) MythologyRepository {
	return &mythologyRepository{db: db}
}

func (r *mythologyRepository) Create(ctx context.Context, mythology *models.Mythology) error {
	if err := r.db.WithContext(ctx).Create(mythology).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mythologyRepository) GetByID(ctx context.Context, id uint) (*models.Mythology, error) {
	var mythology models.Mythology
	if err := r.db.WithContext(ctx).Preload("User").First(&mythology, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Mythology", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &mythology, nil
}

func (r *mythologyRepository) GetBySlug(ctx context.Context, slug string) (*models.Mythology, error) {
	var mythology models.Mythology
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Figures").
		Where("slug = ?", slug).
		First(&mythology).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Mythology", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &mythology, nil
}

func (r *mythologyRepository) GetByUser(ctx context.Context, userID uint) ([]models.Mythology, error) {
	var mythologies []models.Mythology
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&mythologies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return mythologies, nil
}

func (r *mythologyRepository) ListPublic(ctx context.Context, limit, offset int) ([]models.Mythology, error) {
	var mythologies []models.Mythology
	if err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&mythologies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return mythologies, nil
}

func (r *mythologyRepository) Update(ctx context.Context, mythology *models.Mythology) error {
	if err := r.db.WithContext(ctx).Save(mythology).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *mythologyRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Mythology{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
