package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoundStatusAtDerivesFromWindow(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	round := Round{RoundNumber: 1, RoundName: "Aptitude Test", StartTime: start, EndTime: end, Status: RoundStatusUpcoming}

	require.Equal(t, RoundStatusUpcoming, round.StatusAt(start.Add(-time.Minute)))
	require.Equal(t, RoundStatusOngoing, round.StatusAt(start))
	require.Equal(t, RoundStatusOngoing, round.StatusAt(end.Add(-time.Second)))
	require.Equal(t, RoundStatusCompleted, round.StatusAt(end))
	require.Equal(t, RoundStatusCompleted, round.StatusAt(end.Add(time.Hour)))
}

func TestRoundStatusAtNeverRegressesCompleted(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	round := Round{StartTime: start, EndTime: start.Add(time.Hour), Status: RoundStatusCompleted}

	// declared ahead of the window close, the clock must not reopen it
	require.Equal(t, RoundStatusCompleted, round.StatusAt(start.Add(-time.Hour)))
	require.Equal(t, RoundStatusCompleted, round.StatusAt(start.Add(30*time.Minute)))
}

func TestDriveRoundNavigation(t *testing.T) {
	drive := Drive{Rounds: []Round{
		{ID: 3, RoundNumber: 3, RoundName: "HR"},
		{ID: 1, RoundNumber: 1, RoundName: "Aptitude"},
		{ID: 2, RoundNumber: 2, RoundName: "Technical"},
	}}

	last, ok := drive.LastRound()
	require.True(t, ok)
	require.Equal(t, 3, last.RoundNumber)

	next, ok := drive.RoundAfter(1)
	require.True(t, ok)
	require.Equal(t, 2, next.RoundNumber)

	_, ok = drive.RoundAfter(3)
	require.False(t, ok)
}

func TestOfferLetterExpiry(t *testing.T) {
	now := time.Now()
	letter := OfferLetter{Status: OfferStatusPending, ExpiryDate: now.Add(-time.Hour)}
	require.True(t, letter.IsExpiredAt(now))

	letter.Status = OfferStatusAccepted
	require.False(t, letter.IsExpiredAt(now))
	require.True(t, letter.IsTerminal())
}
