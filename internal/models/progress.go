package models

import (
	"time"

	"gorm.io/datatypes"
)

// PlacementStatus enumerates the overall outcome of a candidate within a drive.
type PlacementStatus string

const (
	// PlacementStatusPending indicates the candidate is still in contention.
	PlacementStatusPending PlacementStatus = "pending"
	// PlacementStatusOfferAccepted indicates the candidate cleared the final round.
	PlacementStatusOfferAccepted PlacementStatus = "offer_accepted"
	// PlacementStatusJoined indicates the candidate has joined the company.
	PlacementStatusJoined PlacementStatus = "joined"
	// PlacementStatusRejected indicates the candidate was dropped from the drive.
	PlacementStatusRejected PlacementStatus = "rejected"
)

// StageStatus enumerates per-round clearance outcomes.
type StageStatus string

const (
	// StageStatusPending indicates the round outcome is not decided yet.
	StageStatusPending StageStatus = "pending"
	// StageStatusCleared indicates the candidate was selected in the round.
	StageStatusCleared StageStatus = "cleared"
	// StageStatusNotCleared indicates the candidate was dropped in the round.
	StageStatusNotCleared StageStatus = "not_cleared"
)

// SelectionStage is one entry of a candidate's round-by-round progress log.
type SelectionStage struct {
	RoundNumber int         `json:"round_number"`
	RoundName   string      `json:"round_name"`
	Status      StageStatus `json:"status"`
	Date        time.Time   `json:"date"`
}

// CandidateProgressRecord tracks one candidate's journey through one drive.
// It is a projection of the drive aggregate: every mutation applied to it is
// replayable, so a reconciliation pass can rebuild it from round history.
type CandidateProgressRecord struct {
	ID                uint                                `gorm:"primaryKey" json:"id"`
	DriveID           uint                                `gorm:"not null;uniqueIndex:idx_progress_drive_candidate" json:"drive_id"`
	CandidateID       uint                                `gorm:"not null;uniqueIndex:idx_progress_drive_candidate" json:"candidate_id"`
	Status            PlacementStatus                     `gorm:"size:32;not null;default:pending" json:"status"`
	SelectionProgress datatypes.JSONSlice[SelectionStage] `gorm:"type:json" json:"selection_progress"`
	OfferDetails      datatypes.JSONMap                   `gorm:"type:json" json:"offer_details"`
	CreatedAt         time.Time                           `json:"created_at"`
	UpdatedAt         time.Time                           `json:"updated_at"`
}

// StageFor returns the progress entry for the given round number, if present.
func (r CandidateProgressRecord) StageFor(roundNumber int) (SelectionStage, bool) {
	for _, stage := range r.SelectionProgress {
		if stage.RoundNumber == roundNumber {
			return stage, true
		}
	}
	return SelectionStage{}, false
}
