package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/placement-cell/drive-api/internal/models"
)

// CandidateRepository exposes the candidate directory consumed by the drive
// engine. The directory itself is owned by the student-registration system;
// this service only reads details and flips the placement flag.
type CandidateRepository interface {
	GetByID(ctx context.Context, id uint) (models.Candidate, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.Candidate, error)
	SetPlacement(ctx context.Context, id uint, placed bool, at time.Time) error
}

type candidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository instantiates a GORM-backed candidate directory.
func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

func (r *candidateRepository) GetByID(ctx context.Context, id uint) (models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.WithContext(ctx).First(&candidate, id).Error; err != nil {
		return models.Candidate{}, err
	}

	return candidate, nil
}

func (r *candidateRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.Candidate, error) {
	if len(ids) == 0 {
		return []models.Candidate{}, nil
	}

	var candidates []models.Candidate
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("roll_number ASC").Find(&candidates).Error; err != nil {
		return nil, err
	}

	return candidates, nil
}

func (r *candidateRepository) SetPlacement(ctx context.Context, id uint, placed bool, at time.Time) error {
	columns := map[string]interface{}{"is_placed": placed}
	if placed {
		columns["placed_at"] = at
	} else {
		columns["placed_at"] = nil
	}

	result := r.db.WithContext(ctx).Model(&models.Candidate{}).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
