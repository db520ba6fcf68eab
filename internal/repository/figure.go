package repository

import (
	"context"
	"errors"

	"codex/internal/models"

	"gorm.io/gorm"
)

// FigureRepository defines the interface for mythological figure data operations
type FigureRepository interface {
	Create(ctx context.Context, figure *models.Figure) error
	GetByID(ctx context.Context, id uint) (*models.Figure, error)
	ListByMythology(ctx context.Context, mythologyID uint, kind models.FigureKind) ([]models.Figure, error)
	Update(ctx context.Context, figure *models.Figure) error
	Delete(ctx context.Context, id uint) error
}

type figureRepository struct {
	db *gorm.DB
}

// NewFigureRepository creates a new figure repository
func NewFigureRepository(db *gorm.DB) FigureRepository {
	return &figureRepository{db: db}
}

func (r *figureRepository) Create(ctx context.Context, figure *models.Figure) error {
	if err := r.db.WithContext(ctx).Create(figure).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *figureRepository) GetByID(ctx context.Context, id uint) (*models.Figure, error) {
	var figure models.Figure
	if err := r.db.WithContext(ctx).Preload("Mythology").First(&figure, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Figure", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &figure, nil
}

func (r *figureRepository) ListByMythology(ctx context.Context, mythologyID uint, kind models.FigureKind) ([]models.Figure, error) {
	var figures []models.Figure

	query := r.db.WithContext(ctx).Where("mythology_id = ?", mythologyID).Order("name ASC")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if err := query.Find(&figures).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return figures, nil
}

func (r *figureRepository) Update(ctx context.Context, figure *models.Figure) error {
	if err := r.db.WithContext(ctx).Save(figure).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *figureRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Figure{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
