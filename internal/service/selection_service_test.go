package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/placement-cell/drive-api/internal/dto"
	"github.com/placement-cell/drive-api/internal/models"
)

func twoRoundDrive() *models.Drive {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &models.Drive{
		ID:          1,
		CompanyName: "Acme Systems",
		Status:      models.DriveStatusInProgress,
		Rounds: []models.Round{
			{
				ID:                101,
				DriveID:           1,
				RoundNumber:       1,
				RoundName:         "Aptitude Test",
				StartTime:         start,
				EndTime:           start.Add(2 * time.Hour),
				ApplicantStudents: []uint{1, 2, 3, 4},
				AppearedStudents:  []uint{1, 2, 3},
			},
			{
				ID:          102,
				DriveID:     1,
				RoundNumber: 2,
				RoundName:   "Technical Interview",
				StartTime:   start.Add(24 * time.Hour),
				EndTime:     start.Add(26 * time.Hour),
			},
		},
	}
}

func newSelectionFixture(t *testing.T) (*SelectionService, *driveRepoStub, *progressRepoStub) {
	t.Helper()
	drives := newDriveRepoStub(twoRoundDrive())
	progress := newProgressRepoStub()
	candidates := newCandidateRepoStub(1, 2, 3, 4)
	profiles := &profileRepoStub{profile: models.JobProfile{ID: 7, Title: "Backend Engineer", CTC: "12 LPA", Location: "Pune"}}

	svc := NewSelectionService(drives, candidates, progress, profiles, validator.New(), nil, testLogger())
	return svc, drives, progress
}

func TestUpdateSelectedReplacesSetAndCarriesForward(t *testing.T) {
	svc, drives, progress := newSelectionFixture(t)

	result, err := svc.UpdateSelected(context.Background(), 1, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{1, 2}})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)

	round1 := drives.round(1, 101)
	require.Equal(t, []uint{1, 2}, []uint(round1.SelectedStudents))

	round2 := drives.round(1, 102)
	require.Equal(t, []uint{1, 2}, []uint(round2.ApplicantStudents))
	require.Equal(t, []uint{1, 2}, []uint(round2.AppearedStudents))

	record := progress.record(1, 1)
	require.Equal(t, models.PlacementStatusPending, record.Status)
	stage, ok := record.StageFor(1)
	require.True(t, ok)
	require.Equal(t, models.StageStatusCleared, stage.Status)
}

func TestUpdateSelectedRejectsCandidatesOutsideAppeared(t *testing.T) {
	svc, drives, _ := newSelectionFixture(t)

	_, err := svc.UpdateSelected(context.Background(), 1, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{1, 4}})
	require.ErrorIs(t, err, ErrCandidatesNotAppeared)

	round1 := drives.round(1, 101)
	require.Empty(t, round1.SelectedStudents)
}

func TestUpdateSelectedEmptyListClearsSelection(t *testing.T) {
	svc, drives, progress := newSelectionFixture(t)

	_, err := svc.UpdateSelected(context.Background(), 1, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{1, 2}})
	require.NoError(t, err)

	_, err = svc.UpdateSelected(context.Background(), 1, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{}})
	require.NoError(t, err)

	round1 := drives.round(1, 101)
	require.Empty(t, round1.SelectedStudents)

	record := progress.record(1, 1)
	require.Equal(t, models.PlacementStatusRejected, record.Status)
	stage, ok := record.StageFor(1)
	require.True(t, ok)
	require.Equal(t, models.StageStatusNotCleared, stage.Status)

	// carry-forward is monotonic: the next round keeps its earlier entrants
	round2 := drives.round(1, 102)
	require.Equal(t, []uint{1, 2}, []uint(round2.ApplicantStudents))
}

func TestCarryForwardUnionsAgainstCurrentNextRound(t *testing.T) {
	stub := newDriveRepoStub(twoRoundDrive())

	snapshot, err := stub.GetByID(context.Background(), 1)
	require.NoError(t, err)
	snapshot.Rounds[0].SelectedStudents = []uint{1}

	// a roster update on round two lands after the snapshot was taken
	stub.drives[1].Rounds[1].ApplicantStudents = []uint{9}
	stub.drives[1].Rounds[1].AppearedStudents = []uint{9}

	require.NoError(t, carryForward(context.Background(), stub, snapshot, snapshot.Rounds[0]))

	next := stub.round(1, 102)
	require.ElementsMatch(t, []uint{1, 9}, []uint(next.ApplicantStudents))
	require.ElementsMatch(t, []uint{1, 9}, []uint(next.AppearedStudents))
}

func TestUpdateSelectedIsIdempotent(t *testing.T) {
	svc, _, progress := newSelectionFixture(t)

	_, err := svc.UpdateSelected(context.Background(), 1, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{1, 2}})
	require.NoError(t, err)
	first := progress.record(1, 1)

	_, err = svc.UpdateSelected(context.Background(), 1, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{2, 1}})
	require.NoError(t, err)
	second := progress.record(1, 1)

	stage1, _ := first.StageFor(1)
	stage2, _ := second.StageFor(1)
	require.Equal(t, stage1.Date, stage2.Date)
	require.Equal(t, stage1.Status, stage2.Status)
}

func TestUpdateSelectedFinalRoundSetsOfferAccepted(t *testing.T) {
	drive := twoRoundDrive()
	profileID := uint(7)
	drive.JobProfileID = &profileID
	drive.Rounds[1].ApplicantStudents = []uint{1, 2}
	drive.Rounds[1].AppearedStudents = []uint{1, 2}

	drives := newDriveRepoStub(drive)
	progress := newProgressRepoStub()
	candidates := newCandidateRepoStub(1, 2)
	profiles := &profileRepoStub{profile: models.JobProfile{ID: 7, Title: "Backend Engineer", CTC: "12 LPA", Location: "Pune"}}
	svc := NewSelectionService(drives, candidates, progress, profiles, validator.New(), nil, testLogger())

	_, err := svc.UpdateSelected(context.Background(), 1, 102, dto.SelectionUpdateRequest{CandidateIDs: []uint{1}})
	require.NoError(t, err)

	record := progress.record(1, 1)
	require.Equal(t, models.PlacementStatusOfferAccepted, record.Status)
	require.Equal(t, "Backend Engineer", record.OfferDetails["title"])
	require.Equal(t, "12 LPA", record.OfferDetails["ctc"])
}

func TestUpdateSelectedWarnsWhenProjectionFails(t *testing.T) {
	svc, _, progress := newSelectionFixture(t)
	progress.failFor = map[uint]error{2: errors.New("store offline")}

	result, err := svc.UpdateSelected(context.Background(), 1, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{1, 2}})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "candidate 2")
}

func TestUpdateSelectedGuardsDriveState(t *testing.T) {
	drive := twoRoundDrive()
	drive.Status = models.DriveStatusHold
	drives := newDriveRepoStub(drive)
	svc := NewSelectionService(drives, newCandidateRepoStub(), newProgressRepoStub(), &profileRepoStub{}, validator.New(), nil, testLogger())

	_, err := svc.UpdateSelected(context.Background(), 1, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{1}})
	require.ErrorIs(t, err, ErrDriveOnHold)

	drive.Status = models.DriveStatusClosed
	_, err = svc.UpdateSelected(context.Background(), 1, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{1}})
	require.ErrorIs(t, err, ErrDriveClosed)
}

func TestUpdateAppearedValidatesAgainstApplicantsAndSelected(t *testing.T) {
	svc, drives, _ := newSelectionFixture(t)

	_, err := svc.UpdateAppeared(context.Background(), 1, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{1, 9}})
	require.ErrorIs(t, err, ErrCandidatesNotApplicants)

	_, err = svc.UpdateSelected(context.Background(), 1, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{1, 2}})
	require.NoError(t, err)

	_, err = svc.UpdateAppeared(context.Background(), 1, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{1, 3}})
	require.ErrorIs(t, err, ErrAppearedExcludesSelected)

	_, err = svc.UpdateAppeared(context.Background(), 1, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{1, 2, 4}})
	require.NoError(t, err)

	round1 := drives.round(1, 101)
	require.Equal(t, []uint{1, 2, 4}, []uint(round1.AppearedStudents))
}

func TestUpdateSelectedUnknownRound(t *testing.T) {
	svc, _, _ := newSelectionFixture(t)

	_, err := svc.UpdateSelected(context.Background(), 1, 999, dto.SelectionUpdateRequest{CandidateIDs: []uint{1}})
	require.ErrorIs(t, err, ErrRoundNotFound)

	_, err = svc.UpdateSelected(context.Background(), 99, 101, dto.SelectionUpdateRequest{CandidateIDs: []uint{1}})
	require.ErrorIs(t, err, ErrDriveNotFound)
}
