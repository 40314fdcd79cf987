package repository

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/placement-cell/drive-api/internal/models"
)

// DriveFilter describes pagination & search options for drive listings.
type DriveFilter struct {
	Status   string
	Company  string
	Page     int
	PageSize int
}

// CandidateSetUpdate names the round candidate sets to replace. A nil field
// leaves the stored set untouched; a non-nil empty slice explicitly clears it.
type CandidateSetUpdate struct {
	Applicants *[]uint
	Appeared   *[]uint
	Selected   *[]uint
}

// DriveRepository defines persistence operations for the drive aggregate,
// including its embedded rounds and offer letters.
type DriveRepository interface {
	List(ctx context.Context, filter DriveFilter) ([]models.Drive, int64, error)
	GetByID(ctx context.Context, id uint) (models.Drive, error)
	Create(ctx context.Context, drive *models.Drive) error
	Save(ctx context.Context, drive *models.Drive) error
	GetRound(ctx context.Context, driveID, roundID uint) (models.Round, error)
	SaveRound(ctx context.Context, round *models.Round) error
	DeleteRound(ctx context.Context, driveID, roundID uint) error
	ReplaceCandidateSets(ctx context.Context, driveID, roundID uint, sets CandidateSetUpdate) error
	GetOffer(ctx context.Context, driveID, offerID uint) (models.OfferLetter, error)
	OfferForCandidate(ctx context.Context, driveID, candidateID uint) (models.OfferLetter, error)
	SaveOffer(ctx context.Context, offer *models.OfferLetter) error
	WithinTx(ctx context.Context, fn func(repo DriveRepository) error) error
}

type driveRepository struct {
	db *gorm.DB
}

// NewDriveRepository instantiates a GORM-backed drive repository.
func NewDriveRepository(db *gorm.DB) DriveRepository {
	return &driveRepository{db: db}
}

func (r *driveRepository) List(ctx context.Context, filter DriveFilter) ([]models.Drive, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Drive{})

	if filter.Status != "" {
		query = query.Where("status = ?", strings.TrimSpace(filter.Status))
	}
	if filter.Company != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Company)) + "%"
		query = query.Where("LOWER(company_name) LIKE ?", pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var drives []models.Drive
	if err := query.Order("created_at DESC").Preload("Rounds", roundOrder).Find(&drives).Error; err != nil {
		return nil, 0, err
	}

	return drives, total, nil
}

func (r *driveRepository) GetByID(ctx context.Context, id uint) (models.Drive, error) {
	var drive models.Drive
	err := r.db.WithContext(ctx).
		Preload("Rounds", roundOrder).
		Preload("OfferLetters").
		Preload("JobProfile").
		First(&drive, id).Error
	if err != nil {
		return models.Drive{}, err
	}

	return drive, nil
}

func (r *driveRepository) Create(ctx context.Context, drive *models.Drive) error {
	return r.db.WithContext(ctx).Create(drive).Error
}

func (r *driveRepository) Save(ctx context.Context, drive *models.Drive) error {
	return r.db.WithContext(ctx).Omit("Rounds", "OfferLetters", "JobProfile").Save(drive).Error
}

func (r *driveRepository) GetRound(ctx context.Context, driveID, roundID uint) (models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).
		Where("id = ? AND drive_id = ?", roundID, driveID).
		First(&round).Error
	if err != nil {
		return models.Round{}, err
	}

	return round, nil
}

func (r *driveRepository) SaveRound(ctx context.Context, round *models.Round) error {
	return r.db.WithContext(ctx).Save(round).Error
}

func (r *driveRepository) DeleteRound(ctx context.Context, driveID, roundID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND drive_id = ?", roundID, driveID).
		Delete(&models.Round{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceCandidateSets writes the requested candidate sets in a single round
// row update so no partial roster is ever observable.
func (r *driveRepository) ReplaceCandidateSets(ctx context.Context, driveID, roundID uint, sets CandidateSetUpdate) error {
	columns := map[string]interface{}{}
	if sets.Applicants != nil {
		columns["applicant_students"] = datatypes.NewJSONSlice(*sets.Applicants)
	}
	if sets.Appeared != nil {
		columns["appeared_students"] = datatypes.NewJSONSlice(*sets.Appeared)
	}
	if sets.Selected != nil {
		columns["selected_students"] = datatypes.NewJSONSlice(*sets.Selected)
	}
	if len(columns) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&models.Round{}).
		Where("id = ? AND drive_id = ?", roundID, driveID).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *driveRepository) GetOffer(ctx context.Context, driveID, offerID uint) (models.OfferLetter, error) {
	var offer models.OfferLetter
	err := r.db.WithContext(ctx).
		Where("id = ? AND drive_id = ?", offerID, driveID).
		First(&offer).Error
	if err != nil {
		return models.OfferLetter{}, err
	}

	return offer, nil
}

func (r *driveRepository) OfferForCandidate(ctx context.Context, driveID, candidateID uint) (models.OfferLetter, error) {
	var offer models.OfferLetter
	err := r.db.WithContext(ctx).
		Where("drive_id = ? AND candidate_id = ?", driveID, candidateID).
		First(&offer).Error
	if err != nil {
		return models.OfferLetter{}, err
	}

	return offer, nil
}

func (r *driveRepository) SaveOffer(ctx context.Context, offer *models.OfferLetter) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

func (r *driveRepository) WithinTx(ctx context.Context, fn func(repo DriveRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&driveRepository{db: tx})
	})
}

func roundOrder(db *gorm.DB) *gorm.DB {
	return db.Order("rounds.round_number ASC")
}
