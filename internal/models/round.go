package models

import (
	"time"

	"gorm.io/datatypes"
)

// RoundStatus enumerates the lifecycle states of an evaluation round.
type RoundStatus string

const (
	// RoundStatusUpcoming indicates the round window has not opened yet.
	RoundStatusUpcoming RoundStatus = "upcoming"
	// RoundStatusOngoing indicates the round window is currently open.
	RoundStatusOngoing RoundStatus = "ongoing"
	// RoundStatusCompleted indicates the round has ended or been declared.
	RoundStatusCompleted RoundStatus = "completed"
)

// Round represents one ordered evaluation stage within a drive. The three
// candidate sets are stored as JSON arrays on the round row so a roster
// update is always a single-row write.
type Round struct {
	ID                uint                      `gorm:"primaryKey" json:"id"`
	DriveID           uint                      `gorm:"not null;index" json:"drive_id"`
	RoundNumber       int                       `gorm:"not null" json:"round_number"`
	RoundName         string                    `gorm:"size:255;not null" json:"round_name"`
	StartTime         time.Time                 `gorm:"not null" json:"start_time"`
	EndTime           time.Time                 `gorm:"not null" json:"end_time"`
	Status            RoundStatus               `gorm:"size:32;not null;default:upcoming" json:"status"`
	ResultMessage     string                    `gorm:"size:512" json:"result_message"`
	ResultDescription string                    `gorm:"type:text" json:"result_description"`
	ApplicantStudents datatypes.JSONSlice[uint] `gorm:"type:json" json:"applicant_students"`
	AppearedStudents  datatypes.JSONSlice[uint] `gorm:"type:json" json:"appeared_students"`
	SelectedStudents  datatypes.JSONSlice[uint] `gorm:"type:json" json:"selected_students"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
}

// StatusAt derives the round status from its time window at the given
// instant. A round that has already been declared completed never regresses
// to an earlier state regardless of the clock.
func (r Round) StatusAt(now time.Time) RoundStatus {
	if r.Status == RoundStatusCompleted {
		return RoundStatusCompleted
	}

	switch {
	case now.Before(r.StartTime):
		return RoundStatusUpcoming
	case now.Before(r.EndTime):
		return RoundStatusOngoing
	default:
		return RoundStatusCompleted
	}
}

// IsDeclared reports whether results have been declared for the round.
func (r Round) IsDeclared() bool {
	return r.Status == RoundStatusCompleted
}
