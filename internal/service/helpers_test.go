package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/placement-cell/drive-api/internal/models"
	"github.com/placement-cell/drive-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type driveRepoStub struct {
	drives      map[uint]*models.Drive
	offers      map[uint]*models.OfferLetter
	nextOfferID uint
	replaceErr  error
}

func newDriveRepoStub(drives ...*models.Drive) *driveRepoStub {
	stub := &driveRepoStub{
		drives: map[uint]*models.Drive{},
		offers: map[uint]*models.OfferLetter{},
	}
	for _, drive := range drives {
		stub.drives[drive.ID] = drive
	}
	return stub
}

func (s *driveRepoStub) List(ctx context.Context, filter repository.DriveFilter) ([]models.Drive, int64, error) {
	var result []models.Drive
	for _, drive := range s.drives {
		if filter.Status != "" && string(drive.Status) != filter.Status {
			continue
		}
		result = append(result, *drive)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (s *driveRepoStub) GetByID(ctx context.Context, id uint) (models.Drive, error) {
	drive, ok := s.drives[id]
	if !ok {
		return models.Drive{}, gorm.ErrRecordNotFound
	}

	copied := *drive
	copied.Rounds = append([]models.Round(nil), drive.Rounds...)
	sort.Slice(copied.Rounds, func(i, j int) bool {
		return copied.Rounds[i].RoundNumber < copied.Rounds[j].RoundNumber
	})
	copied.OfferLetters = nil
	for _, offer := range s.offers {
		if offer.DriveID == id {
			copied.OfferLetters = append(copied.OfferLetters, *offer)
		}
	}
	return copied, nil
}

func (s *driveRepoStub) Create(ctx context.Context, drive *models.Drive) error {
	if drive.ID == 0 {
		drive.ID = uint(len(s.drives) + 1)
	}
	for i := range drive.Rounds {
		if drive.Rounds[i].ID == 0 {
			drive.Rounds[i].ID = uint(100*drive.ID) + uint(i) + 1
		}
		drive.Rounds[i].DriveID = drive.ID
	}
	copied := *drive
	s.drives[drive.ID] = &copied
	return nil
}

func (s *driveRepoStub) Save(ctx context.Context, drive *models.Drive) error {
	stored, ok := s.drives[drive.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.CompanyName = drive.CompanyName
	stored.JobProfileID = drive.JobProfileID
	stored.Status = drive.Status
	stored.ApplicantCandidates = drive.ApplicantCandidates
	stored.SelectedCandidates = drive.SelectedCandidates
	return nil
}

func (s *driveRepoStub) GetRound(ctx context.Context, driveID, roundID uint) (models.Round, error) {
	drive, ok := s.drives[driveID]
	if !ok {
		return models.Round{}, gorm.ErrRecordNotFound
	}
	for _, round := range drive.Rounds {
		if round.ID == roundID {
			return round, nil
		}
	}
	return models.Round{}, gorm.ErrRecordNotFound
}

func (s *driveRepoStub) SaveRound(ctx context.Context, round *models.Round) error {
	drive, ok := s.drives[round.DriveID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range drive.Rounds {
		if drive.Rounds[i].ID == round.ID {
			drive.Rounds[i] = *round
			return nil
		}
	}
	if round.ID == 0 {
		round.ID = uint(100*drive.ID) + uint(len(drive.Rounds)) + 1
	}
	drive.Rounds = append(drive.Rounds, *round)
	return nil
}

func (s *driveRepoStub) DeleteRound(ctx context.Context, driveID, roundID uint) error {
	drive, ok := s.drives[driveID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range drive.Rounds {
		if drive.Rounds[i].ID == roundID {
			drive.Rounds = append(drive.Rounds[:i], drive.Rounds[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *driveRepoStub) ReplaceCandidateSets(ctx context.Context, driveID, roundID uint, sets repository.CandidateSetUpdate) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	drive, ok := s.drives[driveID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range drive.Rounds {
		if drive.Rounds[i].ID != roundID {
			continue
		}
		if sets.Applicants != nil {
			drive.Rounds[i].ApplicantStudents = *sets.Applicants
		}
		if sets.Appeared != nil {
			drive.Rounds[i].AppearedStudents = *sets.Appeared
		}
		if sets.Selected != nil {
			drive.Rounds[i].SelectedStudents = *sets.Selected
		}
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (s *driveRepoStub) GetOffer(ctx context.Context, driveID, offerID uint) (models.OfferLetter, error) {
	offer, ok := s.offers[offerID]
	if !ok || offer.DriveID != driveID {
		return models.OfferLetter{}, gorm.ErrRecordNotFound
	}
	return *offer, nil
}

func (s *driveRepoStub) OfferForCandidate(ctx context.Context, driveID, candidateID uint) (models.OfferLetter, error) {
	for _, offer := range s.offers {
		if offer.DriveID == driveID && offer.CandidateID == candidateID {
			return *offer, nil
		}
	}
	return models.OfferLetter{}, gorm.ErrRecordNotFound
}

func (s *driveRepoStub) SaveOffer(ctx context.Context, offer *models.OfferLetter) error {
	if offer.ID == 0 {
		s.nextOfferID++
		offer.ID = s.nextOfferID
	}
	copied := *offer
	s.offers[offer.ID] = &copied
	return nil
}

func (s *driveRepoStub) WithinTx(ctx context.Context, fn func(repo repository.DriveRepository) error) error {
	return fn(s)
}

func (s *driveRepoStub) round(driveID, roundID uint) models.Round {
	round, _ := s.GetRound(context.Background(), driveID, roundID)
	return round
}

type progressRepoStub struct {
	records map[string]*models.CandidateProgressRecord
	failFor map[uint]error
}

func newProgressRepoStub() *progressRepoStub {
	return &progressRepoStub{records: map[string]*models.CandidateProgressRecord{}}
}

func progressKey(driveID, candidateID uint) string {
	return fmt.Sprintf("%d:%d", driveID, candidateID)
}

func (s *progressRepoStub) GetByDriveAndCandidate(ctx context.Context, driveID, candidateID uint) (models.CandidateProgressRecord, error) {
	record, ok := s.records[progressKey(driveID, candidateID)]
	if !ok {
		return models.CandidateProgressRecord{}, gorm.ErrRecordNotFound
	}
	return *record, nil
}

func (s *progressRepoStub) ListByDrive(ctx context.Context, driveID uint) ([]models.CandidateProgressRecord, error) {
	var result []models.CandidateProgressRecord
	for _, record := range s.records {
		if record.DriveID == driveID {
			result = append(result, *record)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CandidateID < result[j].CandidateID })
	return result, nil
}

func (s *progressRepoStub) Upsert(ctx context.Context, record *models.CandidateProgressRecord) error {
	if err, ok := s.failFor[record.CandidateID]; ok {
		return err
	}
	copied := *record
	s.records[progressKey(record.DriveID, record.CandidateID)] = &copied
	return nil
}

func (s *progressRepoStub) record(driveID, candidateID uint) models.CandidateProgressRecord {
	record, ok := s.records[progressKey(driveID, candidateID)]
	if !ok {
		return models.CandidateProgressRecord{}
	}
	return *record
}

type candidateRepoStub struct {
	candidates map[uint]models.Candidate
	placements map[uint]bool
}

func newCandidateRepoStub(ids ...uint) *candidateRepoStub {
	stub := &candidateRepoStub{
		candidates: map[uint]models.Candidate{},
		placements: map[uint]bool{},
	}
	for _, id := range ids {
		stub.candidates[id] = models.Candidate{
			ID:         id,
			Name:       fmt.Sprintf("Candidate %d", id),
			RollNumber: fmt.Sprintf("R%03d", id),
			Email:      fmt.Sprintf("c%d@example.edu", id),
		}
	}
	return stub
}

func (s *candidateRepoStub) GetByID(ctx context.Context, id uint) (models.Candidate, error) {
	candidate, ok := s.candidates[id]
	if !ok {
		return models.Candidate{}, gorm.ErrRecordNotFound
	}
	return candidate, nil
}

func (s *candidateRepoStub) ListByIDs(ctx context.Context, ids []uint) ([]models.Candidate, error) {
	var result []models.Candidate
	for _, id := range ids {
		if candidate, ok := s.candidates[id]; ok {
			result = append(result, candidate)
		}
	}
	return result, nil
}

func (s *candidateRepoStub) SetPlacement(ctx context.Context, id uint, placed bool, at time.Time) error {
	if _, ok := s.candidates[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.placements[id] = placed
	return nil
}

type profileRepoStub struct {
	profile models.JobProfile
	err     error
}

func (s *profileRepoStub) GetByID(ctx context.Context, id uint) (models.JobProfile, error) {
	if s.err != nil {
		return models.JobProfile{}, s.err
	}
	return s.profile, nil
}

type timelineRepoStub struct {
	entries []models.TimelineEntry
}

func (s *timelineRepoStub) Create(ctx context.Context, entry *models.TimelineEntry) error {
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *timelineRepoStub) ListByDrive(ctx context.Context, driveID uint) ([]models.TimelineEntry, error) {
	var result []models.TimelineEntry
	for _, entry := range s.entries {
		if entry.DriveID == driveID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func newTestTimeline() (*TimelineService, *timelineRepoStub) {
	stub := &timelineRepoStub{}
	return NewTimelineService(stub, testLogger()), stub
}
