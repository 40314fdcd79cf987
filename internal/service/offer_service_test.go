package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/placement-cell/drive-api/internal/dto"
	"github.com/placement-cell/drive-api/internal/models"
)

func newOfferFixture(t *testing.T, drive *models.Drive) (*OfferService, *driveRepoStub, *candidateRepoStub, *progressRepoStub) {
	t.Helper()
	drives := newDriveRepoStub(drive)
	candidates := newCandidateRepoStub(1, 2, 3)
	progress := newProgressRepoStub()
	timeline, _ := newTestTimeline()
	events := NewDriveEventPublisher(nil, nil, "placement:drives", testLogger())

	svc := NewOfferService(drives, candidates, progress, timeline, events, validator.New(), 0, testLogger())
	return svc, drives, candidates, progress
}

func TestIssueCreatesLettersWithDefaultExpiry(t *testing.T) {
	svc, _, _, _ := newOfferFixture(t, twoRoundDrive())
	issuedAt := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	result, err := svc.Issue(context.Background(), 1, dto.OfferIssueRequest{
		CandidateIDs: []uint{1, 2},
		Content:      "<script>alert('x')</script><p>Congratulations on your selection!</p>",
	})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	require.Len(t, result.Offers, 2)

	offer := result.Offers[0]
	require.Equal(t, models.OfferStatusPending, offer.Status)
	require.Equal(t, issuedAt, offer.SentDate)
	require.Equal(t, issuedAt.Add(7*24*time.Hour), offer.ExpiryDate)
	require.Equal(t, "<p>Congratulations on your selection!</p>", offer.Content)
}

func TestIssueSkipsUnknownCandidates(t *testing.T) {
	svc, _, _, _ := newOfferFixture(t, twoRoundDrive())

	result, err := svc.Issue(context.Background(), 1, dto.OfferIssueRequest{
		CandidateIDs: []uint{1, 42},
		Content:      "Welcome aboard, full letter attached.",
	})
	require.NoError(t, err)
	require.Len(t, result.Offers, 1)
	require.Len(t, result.Warnings, 1)
	require.Contains(t, result.Warnings[0], "candidate 42")
}

func TestIssueReplacesExistingLetter(t *testing.T) {
	svc, drives, _, _ := newOfferFixture(t, twoRoundDrive())

	first, err := svc.Issue(context.Background(), 1, dto.OfferIssueRequest{
		CandidateIDs: []uint{1},
		Content:      "Original offer letter content.",
	})
	require.NoError(t, err)

	drives.offers[first.Offers[0].ID].Status = models.OfferStatusRejected

	second, err := svc.Issue(context.Background(), 1, dto.OfferIssueRequest{
		CandidateIDs: []uint{1},
		Content:      "Revised offer letter content.",
	})
	require.NoError(t, err)
	require.Len(t, second.Offers, 1)
	require.Equal(t, first.Offers[0].ID, second.Offers[0].ID)
	require.Equal(t, models.OfferStatusPending, second.Offers[0].Status)
	require.Equal(t, "Revised offer letter content.", second.Offers[0].Content)
	require.Nil(t, second.Offers[0].ResponseDate)
}

func TestIssueBlockedOnHoldAllowedOnClosed(t *testing.T) {
	drive := twoRoundDrive()
	drive.Status = models.DriveStatusHold
	svc, _, _, _ := newOfferFixture(t, drive)

	_, err := svc.Issue(context.Background(), 1, dto.OfferIssueRequest{
		CandidateIDs: []uint{1},
		Content:      "Offer letter for the selected candidate.",
	})
	require.ErrorIs(t, err, ErrDriveOnHold)

	drive.Status = models.DriveStatusClosed
	result, err := svc.Issue(context.Background(), 1, dto.OfferIssueRequest{
		CandidateIDs: []uint{1},
		Content:      "Offer letter for the selected candidate.",
	})
	require.NoError(t, err)
	require.Len(t, result.Offers, 1)
}

func TestRespondAcceptedReconcilesPlacement(t *testing.T) {
	svc, drives, candidates, progress := newOfferFixture(t, twoRoundDrive())

	issued, err := svc.Issue(context.Background(), 1, dto.OfferIssueRequest{
		CandidateIDs: []uint{1},
		Content:      "Offer letter for the selected candidate.",
	})
	require.NoError(t, err)
	offerID := issued.Offers[0].ID

	result, err := svc.Respond(context.Background(), 1, offerID, dto.OfferRespondRequest{Status: "accepted"})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	require.Equal(t, models.OfferStatusAccepted, result.Offer.Status)
	require.NotNil(t, result.Offer.ResponseDate)

	require.True(t, candidates.placements[1])

	record := progress.record(1, 1)
	require.Equal(t, models.PlacementStatusOfferAccepted, record.Status)
	require.Equal(t, "accepted", record.OfferDetails["offer_status"])

	stored, err := drives.GetOffer(context.Background(), 1, offerID)
	require.NoError(t, err)
	require.Equal(t, models.OfferStatusAccepted, stored.Status)
}

func TestRespondRejectedClearsPlacement(t *testing.T) {
	svc, _, candidates, progress := newOfferFixture(t, twoRoundDrive())

	issued, err := svc.Issue(context.Background(), 1, dto.OfferIssueRequest{
		CandidateIDs: []uint{1},
		Content:      "Offer letter for the selected candidate.",
	})
	require.NoError(t, err)

	result, err := svc.Respond(context.Background(), 1, issued.Offers[0].ID, dto.OfferRespondRequest{Status: "rejected"})
	require.NoError(t, err)
	require.Equal(t, models.OfferStatusRejected, result.Offer.Status)

	require.False(t, candidates.placements[1])
	record := progress.record(1, 1)
	require.Equal(t, "rejected", record.OfferDetails["offer_status"])
}

func TestRespondExpiredLetterIsRefused(t *testing.T) {
	svc, drives, _, _ := newOfferFixture(t, twoRoundDrive())

	issued, err := svc.Issue(context.Background(), 1, dto.OfferIssueRequest{
		CandidateIDs: []uint{1},
		Content:      "Offer letter for the selected candidate.",
	})
	require.NoError(t, err)
	offerID := issued.Offers[0].ID

	svc.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }

	_, err = svc.Respond(context.Background(), 1, offerID, dto.OfferRespondRequest{Status: "accepted"})
	require.ErrorIs(t, err, ErrOfferExpired)

	stored, err := drives.GetOffer(context.Background(), 1, offerID)
	require.NoError(t, err)
	require.Equal(t, models.OfferStatusExpired, stored.Status)
}

func TestRespondCanOverridePreviousDecision(t *testing.T) {
	svc, _, candidates, _ := newOfferFixture(t, twoRoundDrive())

	issued, err := svc.Issue(context.Background(), 1, dto.OfferIssueRequest{
		CandidateIDs: []uint{1},
		Content:      "Offer letter for the selected candidate.",
	})
	require.NoError(t, err)
	offerID := issued.Offers[0].ID

	_, err = svc.Respond(context.Background(), 1, offerID, dto.OfferRespondRequest{Status: "accepted"})
	require.NoError(t, err)
	require.True(t, candidates.placements[1])

	result, err := svc.Respond(context.Background(), 1, offerID, dto.OfferRespondRequest{Status: "rejected"})
	require.NoError(t, err)
	require.Equal(t, models.OfferStatusRejected, result.Offer.Status)
	require.False(t, candidates.placements[1])
}

func TestRespondUnknownOffer(t *testing.T) {
	svc, _, _, _ := newOfferFixture(t, twoRoundDrive())

	_, err := svc.Respond(context.Background(), 1, 404, dto.OfferRespondRequest{Status: "accepted"})
	require.ErrorIs(t, err, ErrOfferNotFound)
}

func TestIssueRejectsEmptySanitizedContent(t *testing.T) {
	svc, _, _, _ := newOfferFixture(t, twoRoundDrive())

	_, err := svc.Issue(context.Background(), 1, dto.OfferIssueRequest{
		CandidateIDs: []uint{1},
		Content:      "<script>document.cookie</script>",
	})
	require.ErrorIs(t, err, ErrOfferContentEmpty)
}
