package repository

import (
	"context"
	"errors"

	"codex/internal/models"
	"codex/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrAlliancePairExists is returned when an insert hits the unique index on
// the canonical mythology pair. Callers re-fetch and retype the existing row.
var ErrAlliancePairExists = errors.New("alliance already exists for this mythology pair")

// AllianceRepository defines the interface for mythology alliance data operations
type AllianceRepository interface {
	Create(ctx context.Context, alliance *models.MythologyAlliance) error
	GetByPair(ctx context.Context, mythology1ID, mythology2ID uint) (*models.MythologyAlliance, error)
	Update(ctx context.Context, alliance *models.MythologyAlliance) error
	GetForMythology(ctx context.Context, mythologyID uint) ([]models.MythologyAlliance, error)
	GetForUser(ctx context.Context, userID uint) ([]models.MythologyAlliance, error)
	WithTx(tx *gorm.DB) AllianceRepository
}

type allianceRepository struct {
	db *gorm.DB
}

// NewAllianceRepository creates a new alliance repository
func NewAllianceRepository(db *gorm.DB) AllianceRepository {
	return &allianceRepository{db: db}
}

func (r *allianceRepository) WithTx(tx *gorm.DB) AllianceRepository {
	return &allianceRepository{db: tx}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *allianceRepository) Create(ctx context.Context, alliance *models.MythologyAlliance) error {
	alliance.Mythology1ID, alliance.Mythology2ID = models.CanonicalPair(alliance.Mythology1ID, alliance.Mythology2ID)
	if err := r.db.WithContext(ctx).Create(alliance).Error; err != nil {
		if isUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlliancePairExists
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *allianceRepository) GetByPair(ctx context.Context, mythology1ID, mythology2ID uint) (*models.MythologyAlliance, error) {
	defer observability.TrackQuery("select", "mythology_alliances")()

	first, second := models.CanonicalPair(mythology1ID, mythology2ID)

	var alliance models.MythologyAlliance
	if err := r.db.WithContext(ctx).
		Where("mythology1_id = ? AND mythology2_id = ?", first, second).
		First(&alliance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &alliance, nil
}

func (r *allianceRepository) Update(ctx context.Context, alliance *models.MythologyAlliance) error {
	if err := r.db.WithContext(ctx).Save(alliance).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *allianceRepository) GetForMythology(ctx context.Context, mythologyID uint) ([]models.MythologyAlliance, error) {
	defer observability.TrackQuery("select", "mythology_alliances")()

	var alliances []models.MythologyAlliance

	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND (mythology1_id = ? OR mythology2_id = ?)", true, mythologyID, mythologyID).
		Preload("Mythology1").
		Preload("Mythology2").
		Find(&alliances).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return alliances, nil
}

func (r *allianceRepository) GetForUser(ctx context.Context, userID uint) ([]models.MythologyAlliance, error) {
	defer observability.TrackQuery("select", "mythology_alliances")()

	var alliances []models.MythologyAlliance

	// Active relationships touching any mythology owned by the user
	if err := r.db.WithContext(ctx).
		Joins("JOIN mythologies m1 ON m1.id = mythology_alliances.mythology1_id").
		Joins("JOIN mythologies m2 ON m2.id = mythology_alliances.mythology2_id").
		Where("mythology_alliances.is_active = ? AND (m1.user_id = ? OR m2.user_id = ?)", true, userID, userID).
		Preload("Mythology1").
		Preload("Mythology2").
		Find(&alliances).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return alliances, nil
}
