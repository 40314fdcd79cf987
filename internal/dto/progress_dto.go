package dto

import (
	"time"

	"github.com/placement-cell/drive-api/internal/models"
)

// SelectionStageResponse is one entry of a candidate's progress log.
type SelectionStageResponse struct {
	RoundNumber int                `json:"round_number"`
	RoundName   string             `json:"round_name"`
	Status      models.StageStatus `json:"status"`
	Date        time.Time          `json:"date"`
}

// CandidateProgressResponse is the serialized per-(drive, candidate) record.
type CandidateProgressResponse struct {
	ID                uint                     `json:"id"`
	DriveID           uint                     `json:"drive_id"`
	CandidateID       uint                     `json:"candidate_id"`
	Status            models.PlacementStatus   `json:"status"`
	SelectionProgress []SelectionStageResponse `json:"selection_progress"`
	OfferDetails      map[string]interface{}   `json:"offer_details,omitempty"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// NewCandidateProgressResponse converts a progress record into its DTO.
func NewCandidateProgressResponse(record models.CandidateProgressRecord) CandidateProgressResponse {
	stages := make([]SelectionStageResponse, 0, len(record.SelectionProgress))
	for _, stage := range record.SelectionProgress {
		stages = append(stages, SelectionStageResponse{
			RoundNumber: stage.RoundNumber,
			RoundName:   stage.RoundName,
			Status:      stage.Status,
			Date:        stage.Date,
		})
	}

	return CandidateProgressResponse{
		ID:                record.ID,
		DriveID:           record.DriveID,
		CandidateID:       record.CandidateID,
		Status:            record.Status,
		SelectionProgress: stages,
		OfferDetails:      map[string]interface{}(record.OfferDetails),
		UpdatedAt:         record.UpdatedAt,
	}
}
