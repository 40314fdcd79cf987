package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/placement-cell/drive-api/internal/models"
)

// ProgressRepository defines persistence for candidate progress records.
type ProgressRepository interface {
	GetByDriveAndCandidate(ctx context.Context, driveID, candidateID uint) (models.CandidateProgressRecord, error)
	ListByDrive(ctx context.Context, driveID uint) ([]models.CandidateProgressRecord, error)
	Upsert(ctx context.Context, record *models.CandidateProgressRecord) error
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository instantiates a GORM-backed progress repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetByDriveAndCandidate(ctx context.Context, driveID, candidateID uint) (models.CandidateProgressRecord, error) {
	var record models.CandidateProgressRecord
	err := r.db.WithContext(ctx).
		Where("drive_id = ? AND candidate_id = ?", driveID, candidateID).
		First(&record).Error
	if err != nil {
		return models.CandidateProgressRecord{}, err
	}

	return record, nil
}

func (r *progressRepository) ListByDrive(ctx context.Context, driveID uint) ([]models.CandidateProgressRecord, error) {
	var records []models.CandidateProgressRecord
	err := r.db.WithContext(ctx).
		Where("drive_id = ?", driveID).
		Order("candidate_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Upsert inserts the record or, when a row already exists for the
// (drive, candidate) pair, replaces its projected columns.
func (r *progressRepository) Upsert(ctx context.Context, record *models.CandidateProgressRecord) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "drive_id"}, {Name: "candidate_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "selection_progress", "offer_details", "updated_at",
		}),
	}).Create(record).Error
}
