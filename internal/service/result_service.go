package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/placement-cell/drive-api/internal/dto"
	"github.com/placement-cell/drive-api/internal/models"
	"github.com/placement-cell/drive-api/internal/observability"
	"github.com/placement-cell/drive-api/internal/repository"
)

// ResultService declares round results, advancing the drive to the next round
// or closing it after the final one.
type ResultService struct {
	drives     repository.DriveRepository
	candidates repository.CandidateRepository
	progress   repository.ProgressRepository
	timeline   TimelineRecorder
	events     *DriveEventPublisher
	validator  *validator.Validate
	redis      *redis.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewResultService builds a ResultService.
func NewResultService(
	drives repository.DriveRepository,
	candidates repository.CandidateRepository,
	progress repository.ProgressRepository,
	timeline TimelineRecorder,
	events *DriveEventPublisher,
	validate *validator.Validate,
	redisClient *redis.Client,
	logger zerolog.Logger,
) *ResultService {
	return &ResultService{
		drives:     drives,
		candidates: candidates,
		progress:   progress,
		timeline:   timeline,
		events:     events,
		validator:  validate,
		redis:      redisClient,
		logger:     logger.With().Str("component", "result_service").Logger(),
		now:        time.Now,
	}
}

// Declare publishes the round's results. Declaring the last round closes the
// drive and freezes its final selection; any earlier round opens the next
// one and carries the selected candidates forward. The round update, drive
// transition and carry-forward commit atomically.
func (s *ResultService) Declare(ctx context.Context, driveID, roundID uint, req dto.DeclareResultsRequest) (dto.DeclareResultsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.DeclareResultsResponse{}, err
	}

	tracer := otel.Tracer("github.com/placement-cell/drive-api/internal/service/result")
	ctx, span := tracer.Start(ctx, "result.declare")
	span.SetAttributes(
		attribute.Int("drive.id", int(driveID)),
		attribute.Int("round.id", int(roundID)),
	)
	defer span.End()

	release := selectionLocks.acquire(driveID, roundID)
	defer release()

	drive, err := s.drives.GetByID(ctx, driveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DeclareResultsResponse{}, ErrDriveNotFound
		}
		return dto.DeclareResultsResponse{}, err
	}

	switch drive.Status {
	case models.DriveStatusClosed:
		return dto.DeclareResultsResponse{}, ErrDriveClosed
	case models.DriveStatusHold:
		return dto.DeclareResultsResponse{}, ErrDriveOnHold
	}

	var round models.Round
	found := false
	for _, r := range drive.Rounds {
		if r.ID == roundID {
			round = r
			found = true
			break
		}
	}
	if !found {
		return dto.DeclareResultsResponse{}, ErrRoundNotFound
	}

	last, _ := drive.LastRound()
	finalRound := last.ID == round.ID
	next, hasNext := drive.RoundAfter(round.RoundNumber)

	err = s.drives.WithinTx(ctx, func(repo repository.DriveRepository) error {
		round.Status = models.RoundStatusCompleted
		round.ResultMessage = req.ResultMessage
		round.ResultDescription = req.ResultDescription
		if err := repo.SaveRound(ctx, &round); err != nil {
			return err
		}

		if finalRound {
			drive.Status = models.DriveStatusClosed
			drive.SelectedCandidates = datatypes.NewJSONSlice([]uint(round.SelectedStudents))
			return repo.Save(ctx, &drive)
		}

		if hasNext {
			next.Status = models.RoundStatusOngoing
			if err := repo.SaveRound(ctx, &next); err != nil {
				return err
			}
		}
		return carryForward(ctx, repo, drive, round)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "declare_tx_failed")
		return dto.DeclareResultsResponse{}, err
	}

	outcome := "advanced"
	if finalRound {
		outcome = "closed"
	}
	span.SetAttributes(attribute.String("result.outcome", outcome))
	observability.RoundsDeclared().WithLabelValues(outcome).Inc()

	warnings := s.settleRejections(ctx, drive, round)

	s.timeline.Record(ctx, TimelineEntryInput{
		DriveID: drive.ID,
		Action:  EventRoundDeclared,
		Summary: fmt.Sprintf("round %d (%s) declared: %d selected of %d appeared", round.RoundNumber, round.RoundName, len(round.SelectedStudents), len(round.AppearedStudents)),
		Metadata: map[string]interface{}{
			"round_id":     round.ID,
			"round_number": round.RoundNumber,
			"selected":     len(round.SelectedStudents),
			"appeared":     len(round.AppearedStudents),
			"drive_closed": finalRound,
		},
	})

	s.events.Publish(ctx, EventRoundDeclared, drive.ID, map[string]interface{}{
		"round_id":     round.ID,
		"round_number": round.RoundNumber,
		"drive_closed": finalRound,
	})

	bumpRosterVersion(ctx, s.redis, s.logger, driveID)

	updated, err := s.drives.GetByID(ctx, driveID)
	if err != nil {
		return dto.DeclareResultsResponse{}, err
	}

	response := dto.DeclareResultsResponse{
		Drive:       dto.NewDriveResponse(updated, s.now()),
		DriveClosed: finalRound,
		Warnings:    warnings,
	}
	if !finalRound && hasNext {
		nextID := next.ID
		response.NextRoundID = &nextID
	}
	return response, nil
}

// settleRejections marks every candidate who appeared but was not selected as
// not cleared. The pass is best-effort per candidate; failures surface as
// warnings on the declaration response.
func (s *ResultService) settleRejections(ctx context.Context, drive models.Drive, round models.Round) []string {
	rejected := differenceIDs(round.AppearedStudents, round.SelectedStudents)
	if len(rejected) == 0 {
		return nil
	}

	at := s.now()
	var warnings []string

	for _, candidateID := range rejected {
		record, err := s.progress.GetByDriveAndCandidate(ctx, drive.ID, candidateID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				warnings = append(warnings, fmt.Sprintf("progress record for candidate %d not updated: %v", candidateID, err))
				continue
			}
			record = models.CandidateProgressRecord{
				DriveID:           drive.ID,
				CandidateID:       candidateID,
				Status:            models.PlacementStatusPending,
				SelectionProgress: []models.SelectionStage{},
			}
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
