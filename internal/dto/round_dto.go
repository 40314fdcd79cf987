package dto

import (
	"time"

	"github.com/placement-cell/drive-api/internal/models"
)

const isoLayout = time.RFC3339

// RoundCreateRequest describes the payload for adding a round to a drive.
type RoundCreateRequest struct {
	RoundNumber int    `json:"round_number" validate:"required,min=1"`
	RoundName   string `json:"round_name" validate:"required,min=2"`
	StartTime   string `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime     string `json:"end_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// RoundUpdateRequest describes the payload for editing an undeclared round.
type RoundUpdateRequest struct {
	RoundName *string `json:"round_name" validate:"omitempty,min=2"`
	StartTime *string `json:"start_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime   *string `json:"end_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// SelectionUpdateRequest replaces a round's selected (or appeared) candidate
// set. An empty list is meaningful: it explicitly clears the selection.
type SelectionUpdateRequest struct {
	CandidateIDs []uint `json:"candidate_ids"`
}

// DeclareResultsRequest carries the declaration text for closing a round.
type DeclareResultsRequest struct {
	ResultMessage     string `json:"result_message" validate:"required,min=2"`
	ResultDescription string `json:"result_description"`
}

// CandidateSummary carries directory details for roster responses.
type CandidateSummary struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
	Department string `json:"department"`
	Email      string `json:"email"`
}

// RoundRosterResponse returns one of a round's candidate sets with directory details.
type RoundRosterResponse struct {
	DriveID    uint               `json:"drive_id"`
	RoundID    uint               `json:"round_id"`
	RoundName  string             `json:"round_name"`
	Set        string             `json:"set"`
	Candidates []CandidateSummary `json:"candidates"`
	CacheHit   bool               `json:"cache_hit"`
}

// SelectionResultResponse wraps the updated drive together with warnings from
// best-effort progress-record reconciliation.
type SelectionResultResponse struct {
	Drive    DriveResponse `json:"drive"`
	Warnings []string      `json:"warnings,omitempty"`
}

// DeclareResultsResponse reports the outcome of a round declaration.
type DeclareResultsResponse struct {
	Drive       DriveResponse `json:"drive"`
	DriveClosed bool          `json:"drive_closed"`
	NextRoundID *uint         `json:"next_round_id,omitempty"`
	Warnings    []string      `json:"warnings,omitempty"`
}

// ParseTime parses an RFC3339 timestamp from a request payload.
func ParseTime(value string) (time.Time, error) {
	return time.Parse(isoLayout, value)
}

// NewCandidateSummary converts a candidate model into its summary DTO.
func NewCandidateSummary(candidate models.Candidate) CandidateSummary {
	return CandidateSummary{
		ID:         candidate.ID,
		Name:       candidate.Name,
		RollNumber: candidate.RollNumber,
		Department: candidate.Department,
		Email:      candidate.Email,
	}
}
