package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/placement-cell/drive-api/internal/dto"
	"github.com/placement-cell/drive-api/internal/models"
	"github.com/placement-cell/drive-api/internal/observability"
	"github.com/placement-cell/drive-api/internal/repository"
)

var (
	// ErrOfferNotFound indicates the offer letter does not exist on the drive.
	ErrOfferNotFound = errors.New("offer letter not found")
	// ErrOfferExpired indicates the letter's expiry date passed before the response.
	ErrOfferExpired = errors.New("offer letter has expired")
	// ErrOfferContentEmpty indicates sanitization stripped the entire content.
	ErrOfferContentEmpty = errors.New("offer letter content is empty after sanitization")
)

const defaultOfferValidity = 7 * 24 * time.Hour

// OfferService issues offer letters and records candidate responses.
type OfferService struct {
	drives     repository.DriveRepository
	candidates repository.CandidateRepository
	progress   repository.ProgressRepository
	timeline   TimelineRecorder
	events     *DriveEventPublisher
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	validity   time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewOfferService builds an OfferService. validity is the default window
// before an unanswered letter expires; zero selects the 7-day default.
func NewOfferService(
	drives repository.DriveRepository,
	candidates repository.CandidateRepository,
	progress repository.ProgressRepository,
	timeline TimelineRecorder,
	events *DriveEventPublisher,
	validate *validator.Validate,
	validity time.Duration,
	logger zerolog.Logger,
) *OfferService {
	if validity <= 0 {
		validity = defaultOfferValidity
	}

	return &OfferService{
		drives:     drives,
		candidates: candidates,
		progress:   progress,
		timeline:   timeline,
		events:     events,
		validator:  validate,
		sanitizer:  bluemonday.UGCPolicy(),
		validity:   validity,
		logger:     logger.With().Str("component", "offer_service").Logger(),
		now:        time.Now,
	}
}

// Issue creates or re-issues offer letters for the named candidates.
// Re-issuing to a candidate who already holds a letter replaces its content
// and resets it to pending. Issuing on a closed drive is allowed, since
// offers naturally follow final-round declaration; only a hold blocks it.
// Unknown candidates are skipped with a warning rather than failing the batch.
func (s *OfferService) Issue(ctx context.Context, driveID uint, req dto.OfferIssueRequest) (dto.OfferIssueResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.OfferIssueResponse{}, err
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		return dto.OfferIssueResponse{}, ErrOfferContentEmpty
	}

	tracer := otel.Tracer("github.com/placement-cell/drive-api/internal/service/offer")
	ctx, span := tracer.Start(ctx, "offer.issue")
	span.SetAttributes(
		attribute.Int("drive.id", int(driveID)),
		attribute.Int("offer.candidates", len(req.CandidateIDs)),
	)
	defer span.End()

	drive, err := s.drives.GetByID(ctx, driveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.OfferIssueResponse{}, ErrDriveNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "load_drive_failed")
		return dto.OfferIssueResponse{}, err
	}
	if drive.Status == models.DriveStatusHold {
		return dto.OfferIssueResponse{}, ErrDriveOnHold
	}

	sent := s.now()
	expiry := sent.Add(s.validity)
	if req.ExpiryDate != nil {
		parsed, err := dto.ParseTime(*req.ExpiryDate)
		if err != nil {
			return dto.OfferIssueResponse{}, err
		}
		expiry = parsed
	}

	var (
		offers   []dto.OfferLetterResponse
		warnings []string
	)

	for _, candidateID := range normalizeIDs(req.CandidateIDs) {
		if _, err := s.candidates.GetByID(ctx, candidateID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				warnings = append(warnings, fmt.Sprintf("candidate %d not found, offer skipped", candidateID))
				continue
			}
			warnings = append(warnings, fmt.Sprintf("offer for candidate %d not issued: %v", candidateID, err))
			continue
		}

		offer, err := s.drives.OfferForCandidate(ctx, driveID, candidateID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			warnings = append(warnings, fmt.Sprintf("offer for candidate %d not issued: %v", candidateID, err))
			continue
		}

		offer.DriveID = driveID
		offer.CandidateID = candidateID
		offer.Content = content
		offer.SentDate = sent
		offer.ExpiryDate = expiry
		offer.Status = models.OfferStatusPending
		offer.ResponseDate = nil

		if err := s.drives.SaveOffer(ctx, &offer); err != nil {
			warnings = append(warnings, fmt.Sprintf("offer for candidate %d not issued: %v", candidateID, err))
			continue
		}
		offers = append(offers, dto.NewOfferLetterResponse(offer))
	}

	span.SetAttributes(attribute.Int("offer.issued", len(offers)))
	observability.OffersIssued().Add(float64(len(offers)))

	s.timeline.Record(ctx, TimelineEntryInput{
		DriveID:  driveID,
		Action:   EventOffersIssued,
		Summary:  fmt.Sprintf("%d offer letters issued", len(offers)),
		Metadata: map[string]interface{}{"issued": len(offers), "skipped": len(warnings)},
	})

	s.events.Publish(ctx, EventOffersIssued, driveID, map[string]interface{}{
		"issued": len(offers),
	})

	return dto.OfferIssueResponse{Offers: offers, Warnings: warnings}, nil
}

// Respond records a candidate's accept or reject decision. A pending letter
// past its expiry is stamped expired and the response refused. A decision may
// be changed later; re-responding overwrites the previous one so the
// placement cell can correct mistakes. Acceptance flips the candidate's
// placement flag and progress status; those secondary writes are best-effort
// and surface as warnings.
func (s *OfferService) Respond(ctx context.Context, driveID, offerID uint, req dto.OfferRespondRequest) (dto.OfferRespondResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.OfferRespondResponse{}, err
	}

	offer, err := s.drives.GetOffer(ctx, driveID, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.OfferRespondResponse{}, ErrOfferNotFound
		}
		return dto.OfferRespondResponse{}, err
	}

	now := s.now()
	if offer.IsExpiredAt(now) {
		offer.Status = models.OfferStatusExpired
		if err := s.drives.SaveOffer(ctx, &offer); err != nil {
			s.logger.Warn().Err(err).Uint("offer_id", offer.ID).Msg("failed to persist offer expiry")
		}
		return dto.OfferRespondResponse{}, ErrOfferExpired
	}

	offer.Status = models.OfferStatus(req.Status)
	offer.ResponseDate = &now

	if err := s.drives.SaveOffer(ctx, &offer); err != nil {
		return dto.OfferRespondResponse{}, err
	}

	warnings := s.reconcileResponse(ctx, offer, now)

	s.timeline.Record(ctx, TimelineEntryInput{
		DriveID: driveID,
		Action:  EventOfferResponded,
		Summary: fmt.Sprintf("candidate %d %s the offer", offer.CandidateID, offer.Status),
		Metadata: map[string]interface{}{
			"offer_id":     offer.ID,
			"candidate_id": offer.CandidateID,
			"status":       string(offer.Status),
		},
	})

	s.events.Publish(ctx, EventOfferResponded, driveID, map[string]interface{}{
		"offer_id":     offer.ID,
		"candidate_id": offer.CandidateID,
		"status":       string(offer.Status),
	})

	return dto.OfferRespondResponse{
		Offer:    dto.NewOfferLetterResponse(offer),
		Warnings: warnings,
	}, nil
}

// reconcileResponse propagates an offer decision into the candidate directory
// and the progress record.
func (s *OfferService) reconcileResponse(ctx context.Context, offer models.OfferLetter, at time.Time) []string {
	var warnings []string

	accepted := offer.Status == models.OfferStatusAccepted
	if err := s.candidates.SetPlacement(ctx, offer.CandidateID, accepted, at); err != nil {
		warnings = append(warnings, fmt.Sprintf("placement flag for candidate %d not updated: %v", offer.CandidateID, err))
	}

	record, err := s.progress.GetByDriveAndCandidate(ctx, offer.DriveID, offer.CandidateID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			warnings = append(warnings, fmt.Sprintf("progress record for candidate %d not updated: %v", offer.CandidateID, err))
			return warnings
		}
		record = models.CandidateProgressRecord{
			DriveID:           offer.DriveID,
			CandidateID:       offer.CandidateID,
			Status:            models.PlacementStatusPending,
			SelectionProgress: []models.SelectionStage{},
		}
	}

	if record.OfferDetails == nil {
		record.OfferDetails = map[string]interface{}{}
	}
	record.OfferDetails["offer_status"] = string(offer.Status)
	record.OfferDetails["response_date"] = at.Format(time.RFC3339)
	if accepted {
		record.Status = models.PlacementStatusOfferAccepted
	}

	if err := s.progress.Upsert(ctx, &record); err != nil {
		warnings = append(warnings, fmt.Sprintf("progress record for candidate %d not updated: %v", offer.CandidateID, err))
	}

	return warnings
}
