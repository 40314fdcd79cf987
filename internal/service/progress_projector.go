package service

import (
	"sort"
	"time"

	"github.com/placement-cell/drive-api/internal/models"
)

// The progress record is a projection of the drive aggregate. Every function
// here is pure over (record, round, instant) and reports whether it changed
// anything, so applying the same outcome twice is a no-op and a
// reconciliation pass can replay outcomes to repair drift.

// projectStage upserts the stage entry for the round. The date is only
// stamped when the outcome actually changes, which keeps repeated selection
// updates with the same set from churning the record.
func projectStage(record *models.CandidateProgressRecord, round models.Round, status models.StageStatus, at time.Time) bool {
	for i, stage := range record.SelectionProgress {
		if stage.RoundNumber != round.RoundNumber {
			continue
		}
		if stage.Status == status {
			return false
		}
		record.SelectionProgress[i].Status = status
		record.SelectionProgress[i].Date = at
		record.SelectionProgress[i].RoundName = round.RoundName
		return true
	}

	record.SelectionProgress = append(record.SelectionProgress, models.SelectionStage{
		RoundNumber: round.RoundNumber,
		RoundName:   round.RoundName,
		Status:      status,
		Date:        at,
	})
	sort.Slice(record.SelectionProgress, func(i, j int) bool {
		return record.SelectionProgress[i].RoundNumber < record.SelectionProgress[j].RoundNumber
	})
	return true
}

// projectCleared marks the round cleared. Clearing the drive's final round
// is the placement outcome: the overall status flips to offer_accepted and
// the offer defaults are copied from the job profile when available.
func projectCleared(record *models.CandidateProgressRecord, round models.Round, finalRound bool, profile *models.JobProfile, at time.Time) bool {
	changed := projectStage(record, round, models.StageStatusCleared, at)

	if record.Status == models.PlacementStatusRejected {
		// a later re-declaration can reinstate a previously dropped candidate
		record.Status = models.PlacementStatusPending
		changed = true
	}

	if finalRound && record.Status != models.PlacementStatusOfferAccepted && record.Status != models.PlacementStatusJoined {
		record.Status = models.PlacementStatusOfferAccepted
		changed = true
	}

	if finalRound && profile != nil {
		details := map[string]interface{}{
			"title":    profile.Title,
			"ctc":      profile.CTC,
			"location": profile.Location,
		}
		if !sameOfferDetails(record.OfferDetails, details) {
			if record.OfferDetails == nil {
				record.OfferDetails = map[string]interface{}{}
			}
			for key, value := range details {
				record.OfferDetails[key] = value
			}
			changed = true
		}
	}

	return changed
}

// projectNotCleared marks the round not cleared and drops the candidate from
// the drive.
func projectNotCleared(record *models.CandidateProgressRecord, round models.Round, at time.Time) bool {
	changed := projectStage(record, round, models.StageStatusNotCleared, at)

	if record.Status != models.PlacementStatusRejected {
		record.Status = models.PlacementStatusRejected
		changed = true
	}

	return changed
}

func sameOfferDetails(existing map[string]interface{}, details map[string]interface{}) bool {
	if existing == nil {
		return false
	}
	for key, value := range details {
		if existing[key] != value {
			return false
		}
	}
	return true
}
