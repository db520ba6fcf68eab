// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"codex/internal/models"
	"codex/internal/observability"

	"gorm.io/gorm"
)

// CrossoverRepository defines the interface for crossover request data operations
type CrossoverRepository interface {
	Create(ctx context.Context, request *models.CrossoverRequest) error
	GetByID(ctx context.Context, id uint) (*models.CrossoverRequest, error)
	GetPendingBetweenMythologies(ctx context.Context, mythology1ID, mythology2ID uint) (*models.CrossoverRequest, error)
	GetIncoming(ctx context.Context, userID uint) ([]models.CrossoverRequest, error)
	GetSent(ctx context.Context, userID uint) ([]models.CrossoverRequest, error)
	List(ctx context.Context, status models.CrossoverRequestStatus, limit, offset int) ([]models.CrossoverRequest, error)
	// ResolveIfPending conditionally transitions a request out of pending.
	// It returns false when the row was already resolved (or deleted) by a
	// concurrent caller, which callers treat as a lost race.
	ResolveIfPending(ctx context.Context, id uint, status models.CrossoverRequestStatus, responseMessage string, respondedAt time.Time) (bool, error)
	SetCompletedAt(ctx context.Context, id uint, completedAt time.Time) error
	Delete(ctx context.Context, id uint) error
	// WithTx returns a repository bound to the given transaction.
	WithTx(tx *gorm.DB) CrossoverRepository
}

// crossoverRepository implements CrossoverRepository
type crossoverRepository struct {
	db *gorm.DB
}

// NewCrossoverRepository creates a new crossover request repository
func NewCrossoverRepository(db *gorm.DB) CrossoverRepository {
	return &crossoverRepository{db: db}
}

func (r *crossoverRepository) WithTx(tx *gorm.DB) CrossoverRepository {
	return &crossoverRepository{db: tx}
}

func (r *crossoverRepository) Create(ctx context.Context, request *models.CrossoverRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *crossoverRepository) GetByID(ctx context.Context, id uint) (*models.CrossoverRequest, error) {
	defer observability.TrackQuery("select", "crossover_requests")()

	var request models.CrossoverRequest
	if err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("TargetUser").
		Preload("RequesterMythology").
		Preload("TargetMythology").
		First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Crossover request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *crossoverRepository) GetPendingBetweenMythologies(ctx context.Context, mythology1ID, mythology2ID uint) (*models.CrossoverRequest, error) {
	var request models.CrossoverRequest

	// A pending request between the pair in either direction blocks a new one
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.CrossoverRequestStatusPending).
		Where("(requester_mythology_id = ? AND target_mythology_id = ?) OR (requester_mythology_id = ? AND target_mythology_id = ?)",
			mythology1ID, mythology2ID, mythology2ID, mythology1ID).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *crossoverRepository) GetIncoming(ctx context.Context, userID uint) ([]models.CrossoverRequest, error) {
	defer observability.TrackQuery("select", "crossover_requests")()

	var requests []models.CrossoverRequest

	if err := r.db.WithContext(ctx).
		Where("target_user_id = ? AND status = ?", userID, models.CrossoverRequestStatusPending).
		Preload("Requester").
		Preload("RequesterMythology").
		Preload("TargetMythology").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return requests, nil
}

func (r *crossoverRepository) GetSent(ctx context.Context, userID uint) ([]models.CrossoverRequest, error) {
	defer observability.TrackQuery("select", "crossover_requests")()

	var requests []models.CrossoverRequest

	if err := r.db.WithContext(ctx).
		Where("requester_id = ?", userID).
		Preload("TargetUser").
		Preload("RequesterMythology").
		Preload("TargetMythology").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return requests, nil
}

func (r *crossoverRepository) List(ctx context.Context, status models.CrossoverRequestStatus, limit, offset int) ([]models.CrossoverRequest, error) {
	var requests []models.CrossoverRequest

	query := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("TargetUser").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return requests, nil
}

func (r *crossoverRepository) ResolveIfPending(ctx context.Context, id uint, status models.CrossoverRequestStatus, responseMessage string, respondedAt time.Time) (bool, error) {
	defer observability.TrackQuery("update", "crossover_requests")()

	result := r.db.WithContext(ctx).
		Model(&models.CrossoverRequest{}).
		Where("id = ? AND status = ?", id, models.CrossoverRequestStatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"response_message": responseMessage,
			"responded_at":     respondedAt,
		})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *crossoverRepository) SetCompletedAt(ctx context.Context, id uint, completedAt time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&models.CrossoverRequest{}).
		Where("id = ?", id).
		Update("completed_at", completedAt).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *crossoverRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.CrossoverRequest{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
