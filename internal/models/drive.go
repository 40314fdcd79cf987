package models

import (
	"time"

	"gorm.io/datatypes"
)

// DriveStatus enumerates the lifecycle states of a placement drive.
type DriveStatus string

const (
	// DriveStatusInProgress indicates the drive is accepting round mutations.
	DriveStatusInProgress DriveStatus = "inProgress"
	// DriveStatusClosed indicates the final round has been declared.
	DriveStatusClosed DriveStatus = "closed"
	// DriveStatusHold indicates the drive is paused by the placement cell.
	DriveStatusHold DriveStatus = "hold"
)

// Drive represents one company's recruitment campaign composed of ordered rounds.
type Drive struct {
	ID                  uint                      `gorm:"primaryKey" json:"id"`
	CompanyName         string                    `gorm:"size:255;not null" json:"company_name"`
	JobProfileID        *uint                     `json:"job_profile_id"`
	Status              DriveStatus               `gorm:"size:32;not null;default:inProgress" json:"status"`
	ApplicantCandidates datatypes.JSONSlice[uint] `gorm:"type:json" json:"applicant_candidates"`
	SelectedCandidates  datatypes.JSONSlice[uint] `gorm:"type:json" json:"selected_candidates"`
	CreatedAt           time.Time                 `json:"created_at"`
	UpdatedAt           time.Time                 `json:"updated_at"`
	Rounds              []Round                   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"rounds"`
	OfferLetters        []OfferLetter             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"offer_letters"`
	JobProfile          *JobProfile               `json:"job_profile,omitempty"`
}

// IsMutable reports whether round and roster mutations are currently allowed.
func (d Drive) IsMutable() bool {
	return d.Status == DriveStatusInProgress
}

// LastRound returns the round with the highest round number, if any.
func (d Drive) LastRound() (Round, bool) {
	if len(d.Rounds) == 0 {
		return Round{}, false
	}

	last := d.Rounds[0]
	for _, round := range d.Rounds[1:] {
		if round.RoundNumber > last.RoundNumber {
			last = round
		}
	}
	return last, true
}

// RoundAfter returns the round immediately following the given round number.
func (d Drive) RoundAfter(roundNumber int) (Round, bool) {
	var next Round
	found := false
	for _, round := range d.Rounds {
		if round.RoundNumber <= roundNumber {
			continue
		}
		if !found || round.RoundNumber < next.RoundNumber {
			next = round
			found = true
		}
	}
	return next, found
}
