package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/placement-cell/drive-api/internal/dto"
	"github.com/placement-cell/drive-api/internal/models"
	"github.com/placement-cell/drive-api/internal/repository"
)

// TimelineEntryInput describes one auditable drive event to record.
type TimelineEntryInput struct {
	DriveID  uint
	Action   string
	Summary  string
	Metadata map[string]interface{}
}

// TimelineRecorder records drive timeline entries. Recording is best-effort:
// implementations log failures instead of propagating them so an audit miss
// never fails the operation it describes.
type TimelineRecorder interface {
	Record(ctx context.Context, input TimelineEntryInput)
}

// TimelineService records and lists the audit trail of a drive.
type TimelineService struct {
	timelines repository.TimelineRepository
	logger    zerolog.Logger
}

// NewTimelineService builds a TimelineService.
func NewTimelineService(timelines repository.TimelineRepository, logger zerolog.Logger) *TimelineService {
	return &TimelineService{
		timelines: timelines,
		logger:    logger.With().Str("component", "timeline_service").Logger(),
	}
}

// Record persists a timeline entry, logging instead of failing on error.
func (s *TimelineService) Record(ctx context.Context, input TimelineEntryInput) {
	entry := models.TimelineEntry{
		DriveID:  input.DriveID,
		Action:   input.Action,
		Summary:  input.Summary,
		Metadata: input.Metadata,
	}

	if err := s.timelines.Create(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).
			Uint("drive_id", input.DriveID).
			Str("action", input.Action).
			Msg("failed to record timeline entry")
	}
}

// ListByDrive returns the drive's timeline, newest first.
func (s *TimelineService) ListByDrive(ctx context.Context, driveID uint) ([]dto.TimelineEntryResponse, error) {
	entries, err := s.timelines.ListByDrive(ctx, driveID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TimelineEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewTimelineEntryResponse(entry))
	}
	return responses, nil
}
