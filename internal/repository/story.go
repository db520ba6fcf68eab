package repository

import (
	"context"
	"errors"

	"codex/internal/models"

	"gorm.io/gorm"
)

// StoryRepository defines the interface for crossover story data operations
type StoryRepository interface {
	Create(ctx context.Context, story *models.CrossoverStory) error
	GetByID(ctx context.Context, id uint) (*models.CrossoverStory, error)
	GetForUser(ctx context.Context, userID uint) ([]models.CrossoverStory, error)
	GetForMythology(ctx context.Context, mythologyID uint) ([]models.CrossoverStory, error)
	Update(ctx context.Context, story *models.CrossoverStory) error
	WithTx(tx *gorm.DB) StoryRepository
}

type storyRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new crossover story repository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) WithTx(tx *gorm.DB) StoryRepository {
	return &storyRepository{db: tx}
}

func (r *storyRepository) Create(ctx context.Context, story *models.CrossoverStory) error {
	if err := r.db.WithContext(ctx).Create(story).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *storyRepository) GetByID(ctx context.Context, id uint) (*models.CrossoverStory, error) {
	var story models.CrossoverStory
	if err := r.db.WithContext(ctx).
		Preload("Mythology1").
		Preload("Mythology2").
		Preload("Author1").
		Preload("Author2").
		First(&story, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Crossover story", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &story, nil
}

func (r *storyRepository) GetForUser(ctx context.Context, userID uint) ([]models.CrossoverStory, error) {
	var stories []models.CrossoverStory

	if err := r.db.WithContext(ctx).
		Where("author1_id = ? OR author2_id = ?", userID, userID).
		Preload("Mythology1").
		Preload("Mythology2").
		Order("created_at DESC").
		Find(&stories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return stories, nil
}

func (r *storyRepository) GetForMythology(ctx context.Context, mythologyID uint) ([]models.CrossoverStory, error) {
	var stories []models.CrossoverStory

	if err := r.db.WithContext(ctx).
		Where("mythology1_id = ? OR mythology2_id = ?", mythologyID, mythologyID).
		Preload("Mythology1").
		Preload("Mythology2").
		Order("created_at DESC").
		Find(&stories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return stories, nil
}

func (r *storyRepository) Update(ctx context.Context, story *models.CrossoverStory) error {
	if err := r.db.WithContext(ctx).Save(story).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
