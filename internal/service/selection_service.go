package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/placement-cell/drive-api/internal/dto"
	"github.com/placement-cell/drive-api/internal/models"
	"github.com/placement-cell/drive-api/internal/repository"
)

var (
	// ErrCandidatesNotAppeared rejects a selection naming candidates outside
	// the round's appeared set.
	ErrCandidatesNotAppeared = errors.New("selection includes candidates who did not appear in the round")
	// ErrCandidatesNotApplicants rejects an appeared update naming candidates
	// outside the round's applicant set.
	ErrCandidatesNotApplicants = errors.New("appeared list includes candidates who did not apply for the round")
	// ErrAppearedExcludesSelected rejects an appeared update that would orphan
	// already-selected candidates.
	ErrAppearedExcludesSelected = errors.New("appeared list must cover the round's selected candidates")
)

// roundLocks serializes roster mutations per (drive, round) pair so
// concurrent replace-and-diff passes never interleave.
type roundLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *roundLocks) acquire(driveID, roundID uint) func() {
	key := fmt.Sprintf("%d:%d", driveID, roundID)

	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// selectionLocks is shared by the selection and result services: a selection
// update and a declaration on the same round must never run concurrently.
var selectionLocks = &roundLocks{}

// SelectionService replaces round candidate sets and propagates the diff into
// candidate progress records.
type SelectionService struct {
	drives     repository.DriveRepository
	candidates repository.CandidateRepository
	progress   repository.ProgressRepository
	profiles   repository.JobProfileRepository
	validator  *validator.Validate
	redis      *redis.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSelectionService builds a SelectionService.
func NewSelectionService(
	drives repository.DriveRepository,
	candidates repository.CandidateRepository,
	progress repository.ProgressRepository,
	profiles repository.JobProfileRepository,
	validate *validator.Validate,
	redisClient *redis.Client,
	logger zerolog.Logger,
) *SelectionService {
	return &SelectionService{
		drives:     drives,
		candidates: candidates,
		progress:   progress,
		profiles:   profiles,
		validator:  validate,
		redis:      redisClient,
		logger:     logger.With().Str("component", "selection_service").Logger(),
		now:        time.Now,
	}
}

// UpdateSelected replaces the round's selected set. The new set must be a
// subset of the round's appeared set. The previous set is snapshotted before
// the write so the diff can be propagated: newly added candidates are marked
// cleared, removed candidates not cleared. An empty list clears the
// selection entirely.
func (s *SelectionService) UpdateSelected(ctx context.Context, driveID, roundID uint, req dto.SelectionUpdateRequest) (dto.SelectionResultResponse, error) {
	tracer := otel.Tracer("github.com/placement-cell/drive-api/internal/service/selection")
	ctx, span := tracer.Start(ctx, "selection.update_selected", trace.WithAttributes(
		attribute.Int("drive.id", int(driveID)),
		attribute.Int("round.id", int(roundID)),
	))
	defer span.End()

	release := selectionLocks.acquire(driveID, roundID)
	defer release()

	drive, round, err := s.loadMutableRound(ctx, driveID, roundID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_round_failed")
		return dto.SelectionResultResponse{}, err
	}

	selected := normalizeIDs(req.CandidateIDs)
	if invalid := missingIDs(selected, round.AppearedStudents); len(invalid) > 0 {
		return dto.SelectionResultResponse{}, fmt.Errorf("%w: %v", ErrCandidatesNotAppeared, invalid)
	}
	span.SetAttributes(attribute.Int("selection.count", len(selected)))

	previous := []uint(round.SelectedStudents)

	err = s.drives.ReplaceCandidateSets(ctx, driveID, roundID, repository.CandidateSetUpdate{
		Selected: &selected,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SelectionResultResponse{}, ErrRoundNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "replace_selected_failed")
		return dto.SelectionResultResponse{}, err
	}
	round.SelectedStudents = selected

	var warnings []string
	if err := carryForward(ctx, s.drives, drive, round); err != nil {
		warnings = append(warnings, fmt.Sprintf("failed to carry selection into the next round: %v", err))
	}

	warnings = append(warnings, s.projectSelectionDiff(ctx, drive, round, previous, selected)...)

	bumpRosterVersion(ctx, s.redis, s.logger, driveID)

	updated, err := s.reloadDrive(ctx, driveID)
	if err != nil {
		return dto.SelectionResultResponse{}, err
	}

	return dto.SelectionResultResponse{
		Drive:    dto.NewDriveResponse(updated, s.now()),
		Warnings: warnings,
	}, nil
}

// UpdateAppeared replaces the round's appeared set. The new set must be a
// subset of the round's applicants and must still cover every currently
// selected candidate.
func (s *SelectionService) UpdateAppeared(ctx context.Context, driveID, roundID uint, req dto.SelectionUpdateRequest) (dto.SelectionResultResponse, error) {
	release := selectionLocks.acquire(driveID, roundID)
	defer release()

	_, round, err := s.loadMutableRound(ctx, driveID, roundID)
	if err != nil {
		return dto.SelectionResultResponse{}, err
	}

	appeared := normalizeIDs(req.CandidateIDs)
	if invalid := missingIDs(appeared, round.ApplicantStudents); len(invalid) > 0 {
		return dto.SelectionResultResponse{}, fmt.Errorf("%w: %v", ErrCandidatesNotApplicants, invalid)
	}
	if orphaned := missingIDs(round.SelectedStudents, appeared); len(orphaned) > 0 {
		return dto.SelectionResultResponse{}, fmt.Errorf("%w: %v", ErrAppearedExcludesSelected, orphaned)
	}

	err = s.drives.ReplaceCandidateSets(ctx, driveID, roundID, repository.CandidateSetUpdate{
		Appeared: &appeared,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SelectionResultResponse{}, ErrRoundNotFound
		}
		return dto.SelectionResultResponse{}, err
	}

	bumpRosterVersion(ctx, s.redis, s.logger, driveID)

	updated, err := s.reloadDrive(ctx, driveID)
	if err != nil {
		return dto.SelectionResultResponse{}, err
	}

	return dto.SelectionResultResponse{
		Drive: dto.NewDriveResponse(updated, s.now()),
	}, nil
}

// projectSelectionDiff applies the selection diff to progress records. Each
// candidate is handled independently and best-effort: a failed projection
// becomes a warning, never an error, because the roster write has already
// been committed.
func (s *SelectionService) projectSelectionDiff(ctx context.Context, drive models.Drive, round models.Round, previous, selected []uint) []string {
	added := differenceIDs(selected, previous)
	removed := differenceIDs(previous, selected)
	if len(added) == 0 && len(removed) == 0 {
		return nil
	}

	last, hasLast := drive.LastRound()
	finalRound := hasLast && last.ID == round.ID

	var profile *models.JobProfile
	if finalRound && drive.JobProfileID != nil {
		p, err := s.profiles.GetByID(ctx, *drive.JobProfileID)
		if err != nil {
			s.logger.Warn().Err(err).Uint("drive_id", drive.ID).Msg("failed to load job profile for offer details")
		} else {
			profile = &p
		}
	}

	at := s.now()
	var warnings []string

	for _, candidateID := range added {
		record, err := s.loadOrSeedRecord(ctx, drive.ID, candidateID)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("progress record for candidate %d not updated: %v", candidateID, err))
			continue
		}
		if !projectCleared(&record, round, finalRound, profile, at) {
			continue
		}
		if err := s.progress.Upsert(ctx, &record); err != nil {
			warnings = append(warnings, fmt.Sprintf("progress record for candidate %d not updated: %v", candidateID, err))
		}
	}

	for _, candidateID := range removed {
		record, err := s.loadOrSeedRecord(ctx, drive.ID, candidateID)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("progress record for candidate %d not updated: %v", candidateID, err))
			continue
		}
		if !projectNotCleared(&record, round, at) {
			continue
		}
		if err := s.progress.Upsert(ctx, &record); err != nil {
			warnings = append(warnings, fmt.Sprintf("progress record for candidate %d not updated: %v", candidateID, err))
		}
	}

	return warnings
}

func (s *SelectionService) loadOrSeedRecord(ctx context.Context, driveID, candidateID uint) (models.CandidateProgressRecord, error) {
	record, err := s.progress.GetByDriveAndCandidate(ctx, driveID, candidateID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CandidateProgressRecord{}, err
	}

	return models.CandidateProgressRecord{
		DriveID:           driveID,
		CandidateID:       candidateID,
		Status:            models.PlacementStatusPending,
		SelectionProgress: []models.SelectionStage{},
	}, nil
}

func (s *SelectionService) loadMutableRound(ctx context.Context, driveID, roundID uint) (models.Drive, models.Round, error) {
	drive, err := s.drives.GetByID(ctx, driveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Drive{}, models.Round{}, ErrDriveNotFound
		}
		return models.Drive{}, models.Round{}, err
	}

	switch drive.Status {
	case models.DriveStatusClosed:
		return models.Drive{}, models.Round{}, ErrDriveClosed
	case models.DriveStatusHold:
		return models.Drive{}, models.Round{}, ErrDriveOnHold
	}

	for _, round := range drive.Rounds {
		if round.ID == roundID {
			return drive, round, nil
		}
	}
	return models.Drive{}, models.Round{}, ErrRoundNotFound
}

func (s *SelectionService) reloadDrive(ctx context.Context, driveID uint) (models.Drive, error) {
	drive, err := s.drives.GetByID(ctx, driveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Drive{}, ErrDriveNotFound
		}
		return models.Drive{}, err
	}
	return drive, nil
}

// carryForward unions the round's selected candidates into the next round's
// applicant and appeared sets. The union never removes ids that are already
// there, so repeated selection updates only ever widen the next round.
// The next round's lock is taken and its sets re-read under it: the drive
// snapshot was loaded under the current round's lock only, and a concurrent
// roster update on the next round may have committed since. Locks are always
// taken in round order, so holding the current round's lock here cannot
// deadlock.
func carryForward(ctx context.Context, drives repository.DriveRepository, drive models.Drive, round models.Round) error {
	if len(round.SelectedStudents) == 0 {
		return nil
	}

	next, ok := drive.RoundAfter(round.RoundNumber)
	if !ok {
		return nil
	}

	release := selectionLocks.acquire(drive.ID, next.ID)
	defer release()

	current, err := drives.GetRound(ctx, drive.ID, next.ID)
	if err != nil {
		return err
	}

	applicants := unionIDs(current.ApplicantStudents, round.SelectedStudents)
	appeared := unionIDs(current.AppearedStudents, round.SelectedStudents)

	return drives.ReplaceCandidateSets(ctx, drive.ID, next.ID, repository.CandidateSetUpdate{
		Applicants: &applicants,
		Appeared:   &appeared,
	})
}
