package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/placement-cell/drive-api/internal/models"
)

// JobProfileRepository reads the job-profile details attached to a drive.
type JobProfileRepository interface {
	GetByID(ctx context.Context, id uint) (models.JobProfile, error)
}

type jobProfileRepository struct {
	db *gorm.DB
}

// NewJobProfileRepository instantiates a GORM-backed job profile repository.
func NewJobProfileRepository(db *gorm.DB) JobProfileRepository {
	return &jobProfileRepository{db: db}
}

func (r *jobProfileRepository) GetByID(ctx context.Context, id uint) (models.JobProfile, error) {
	var profile models.JobProfile
	if err := r.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		return models.JobProfile{}, err
	}

	return profile, nil
}
