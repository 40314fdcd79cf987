package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/placement-cell/drive-api/internal/models"
)

// TimelineRepository defines persistence for drive timeline entries.
type TimelineRepository interface {
	Create(ctx context.Context, entry *models.TimelineEntry) error
	ListByDrive(ctx context.Context, driveID uint) ([]models.TimelineEntry, error)
}

type timelineRepository struct {
	db *gorm.DB
}

// NewTimelineRepository instantiates a GORM-backed timeline repository.
func NewTimelineRepository(db *gorm.DB) TimelineRepository {
	return &timelineRepository{db: db}
}

func (r *timelineRepository) Create(ctx context.Context, entry *models.TimelineEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *timelineRepository) ListByDrive(ctx context.Context, driveID uint) ([]models.TimelineEntry, error) {
	var entries []models.TimelineEntry
	err := r.db.WithContext(ctx).
		Where("drive_id = ?", driveID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}
