package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/placement-cell/drive-api/internal/models"
)

func projectorRound() models.Round {
	return models.Round{ID: 101, RoundNumber: 1, RoundName: "Aptitude Test"}
}

func TestProjectStageIsIdempotent(t *testing.T) {
	record := models.CandidateProgressRecord{DriveID: 1, CandidateID: 2, Status: models.PlacementStatusPending}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.True(t, projectStage(&record, projectorRound(), models.StageStatusCleared, at))
	require.False(t, projectStage(&record, projectorRound(), models.StageStatusCleared, at.Add(time.Hour)))

	stage, ok := record.StageFor(1)
	require.True(t, ok)
	require.Equal(t, at, stage.Date)
}

func TestProjectStageKeepsRoundOrder(t *testing.T) {
	record := models.CandidateProgressRecord{}
	at := time.Now()

	later := models.Round{ID: 103, RoundNumber: 3, RoundName: "HR"}
	earlier := models.Round{ID: 101, RoundNumber: 1, RoundName: "Aptitude"}

	require.True(t, projectStage(&record, later, models.StageStatusCleared, at))
	require.True(t, projectStage(&record, earlier, models.StageStatusCleared, at))

	require.Equal(t, 1, record.SelectionProgress[0].RoundNumber)
	require.Equal(t, 3, record.SelectionProgress[1].RoundNumber)
}

func TestProjectClearedFinalRoundSetsOfferDetails(t *testing.T) {
	record := models.CandidateProgressRecord{Status: models.PlacementStatusPending}
	profile := models.JobProfile{Title: "Backend Engineer", CTC: "12 LPA", Location: "Pune"}

	changed := projectCleared(&record, projectorRound(), true, &profile, time.Now())
	require.True(t, changed)
	require.Equal(t, models.PlacementStatusOfferAccepted, record.Status)
	require.Equal(t, "Backend Engineer", record.OfferDetails["title"])
	require.Equal(t, "12 LPA", record.OfferDetails["ctc"])
	require.Equal(t, "Pune", record.OfferDetails["location"])

	// replaying the same outcome changes nothing
	require.False(t, projectCleared(&record, projectorRound(), true, &profile, time.Now()))
}

func TestProjectClearedReinstatesRejectedCandidate(t *testing.T) {
	record := models.CandidateProgressRecord{Status: models.PlacementStatusRejected}

	require.True(t, projectCleared(&record, projectorRound(), false, nil, time.Now()))
	require.Equal(t, models.PlacementStatusPending, record.Status)
}

func TestProjectNotClearedRejects(t *testing.T) {
	record := models.CandidateProgressRecord{Status: models.PlacementStatusPending}

	require.True(t, projectNotCleared(&record, projectorRound(), time.Now()))
	require.Equal(t, models.PlacementStatusRejected, record.Status)

	stage, ok := record.StageFor(1)
	require.True(t, ok)
	require.Equal(t, models.StageStatusNotCleared, stage.Status)

	require.False(t, projectNotCleared(&record, projectorRound(), time.Now()))
}
