package dto

import (
	"time"

	"github.com/placement-cell/drive-api/internal/models"
)

// PaginationMeta describes pagination details attached to list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// DriveCreateRequest describes the payload for opening a new placement drive.
type DriveCreateRequest struct {
	CompanyName  string               `json:"company_name" validate:"required,min=2"`
	JobProfileID *uint                `json:"job_profile_id"`
	Rounds       []RoundCreateRequest `json:"rounds" validate:"omitempty,dive"`
}

// DriveStatusUpdateRequest places a drive on hold or resumes it. Closing a
// drive only ever happens through result declaration on the final round.
type DriveStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=inProgress hold"`
}

// DriveListRequest captures list filters for drives.
type DriveListRequest struct {
	Status   string `json:"status" validate:"omitempty,oneof=inProgress closed hold"`
	Company  string `json:"company"`
	Page     int    `json:"page" validate:"omitempty,min=1"`
	PageSize int    `json:"page_size" validate:"omitempty,min=1,max=100"`
}

// RegisterApplicantsRequest adds candidates to the drive's applicant pool.
type RegisterApplicantsRequest struct {
	CandidateIDs []uint `json:"candidate_ids" validate:"required,min=1"`
}

// RoundResponse is the serialized representation of a round.
type RoundResponse struct {
	ID                uint               `json:"id"`
	RoundNumber       int                `json:"round_number"`
	RoundName         string             `json:"round_name"`
	StartTime         time.Time          `json:"start_time"`
	EndTime           time.Time          `json:"end_time"`
	Status            models.RoundStatus `json:"status"`
	ResultMessage     string             `json:"result_message,omitempty"`
	ResultDescription string             `json:"result_description,omitempty"`
	ApplicantStudents []uint             `json:"applicant_students"`
	AppearedStudents  []uint             `json:"appeared_students"`
	SelectedStudents  []uint             `json:"selected_students"`
}

// DriveResponse is the serialized representation of a drive aggregate.
type DriveResponse struct {
	ID                  uint                  `json:"id"`
	CompanyName         string                `json:"company_name"`
	JobProfileID        *uint                 `json:"job_profile_id,omitempty"`
	Status              models.DriveStatus    `json:"status"`
	ApplicantCandidates []uint                `json:"applicant_candidates"`
	SelectedCandidates  []uint                `json:"selected_candidates"`
	Rounds              []RoundResponse       `json:"rounds"`
	OfferLetters        []OfferLetterResponse `json:"offer_letters,omitempty"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// DriveListResponse wraps a paginated drive listing.
type DriveListResponse struct {
	Items      []DriveResponse `json:"items"`
	Pagination PaginationMeta  `json:"pagination"`
}

// TimelineEntryResponse is the serialized representation of a timeline event.
type TimelineEntryResponse struct {
	ID        uint                   `json:"id"`
	DriveID   uint                   `json:"drive_id"`
	Action    string                 `json:"action"`
	Summary   string                 `json:"summary"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewRoundResponse converts a round model into its DTO, refreshing the
// status from the round clock.
func NewRoundResponse(round models.Round, now time.Time) RoundResponse {
	return RoundResponse{
		ID:                round.ID,
		RoundNumber:       round.RoundNumber,
		RoundName:         round.RoundName,
		StartTime:         round.StartTime,
		EndTime:           round.EndTime,
		Status:            round.StatusAt(now),
		ResultMessage:     round.ResultMessage,
		ResultDescription: round.ResultDescription,
		ApplicantStudents: emptyIfNil(round.ApplicantStudents),
		AppearedStudents:  emptyIfNil(round.AppearedStudents),
		SelectedStudents:  emptyIfNil(round.SelectedStudents),
	}
}

// NewDriveResponse converts a drive model into its DTO.
func NewDriveResponse(drive models.Drive, now time.Time) DriveResponse {
	rounds := make([]RoundResponse, 0, len(drive.Rounds))
	for _, round := range drive.Rounds {
		rounds = append(rounds, NewRoundResponse(round, now))
	}

	return DriveResponse{
		ID:                  drive.ID,
		CompanyName:         drive.CompanyName,
		JobProfileID:        drive.JobProfileID,
		Status:              drive.Status,
		ApplicantCandidates: emptyIfNil(drive.ApplicantCandidates),
		SelectedCandidates:  emptyIfNil(drive.SelectedCandidates),
		Rounds:              rounds,
		OfferLetters:        NewOfferLetterResponseSlice(drive.OfferLetters),
		CreatedAt:           drive.CreatedAt,
		UpdatedAt:           drive.UpdatedAt,
	}
}

// NewTimelineEntryResponse converts a timeline entry into its DTO.
func NewTimelineEntryResponse(entry models.TimelineEntry) TimelineEntryResponse {
	return TimelineEntryResponse{
		ID:        entry.ID,
		DriveID:   entry.DriveID,
		Action:    entry.Action,
		Summary:   entry.Summary,
		Metadata:  map[string]interface{}(entry.Metadata),
		CreatedAt: entry.CreatedAt,
	}
}

func emptyIfNil(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}
	return ids
}
