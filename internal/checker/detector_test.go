package checker

import (
	"testing"
	"time"

	"ticketwatch-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

func TestDetectTransition(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, timezone.Location)

	for _, prior := range []Status{StatusSoldOut, StatusUnknown} {
		decision := Detect(StatusAvailable, State{LastStatus: prior}, false, now)
		require.True(t, decision.ShouldNotify, "prior=%s", prior)
		require.Equal(t, StatusAvailable, decision.NewState.LastStatus)
		require.Equal(t, now, decision.NewState.LastNotifiedAt)
	}
}

func TestDetectIdempotentOnAvailable(t *testing.T) {
	now := timezone.Now()
	notifiedAt := now.Add(-time.Hour)

	decision := Detect(StatusAvailable, State{
		LastStatus:     StatusAvailable,
		LastNotifiedAt: notifiedAt,
	}, false, now)

	require.False(t, decision.ShouldNotify)
	require.Equal(t, StatusAvailable, decision.NewState.LastStatus)
	// untouched when no mail goes out
	require.Equal(t, notifiedAt, decision.NewState.LastNotifiedAt)
}

func TestDetectSilentEdges(t *testing.T) {
	now := timezone.Now()

	testCases := []struct {
		current Status
		prior   Status
	}{
		{StatusSoldOut, StatusAvailable},
		{StatusSoldOut, StatusSoldOut},
		{StatusUnknown, StatusAvailable},
		{StatusUnknown, StatusSoldOut},
		{StatusUnknown, StatusUnknown},
	}
	for _, test := range testCases {
		decision := Detect(test.current, State{LastStatus: test.prior}, false, now)
		require.False(t, decision.ShouldNotify, "%s -> %s", test.prior, test.current)
		// the edge is silent but the status still advances
		require.Equal(t, test.current, decision.NewState.LastStatus)
		require.Equal(t, now, decision.NewState.LastCheckedAt)
	}
}

func TestDetectForceNotifyOverridesGate(t *testing.T) {
	now := timezone.Now()

	for _, current := range []Status{StatusAvailable, StatusSoldOut, StatusUnknown} {
		for _, prior := range []Status{StatusAvailable, StatusSoldOut, StatusUnknown} {
			decision := Detect(current, State{LastStatus: prior}, true, now)
			require.True(t, decision.ShouldNotify, "%s -> %s", prior, current)
			require.Equal(t, now, decision.NewState.LastNotifiedAt)
		}
	}
}

func TestDetectFirstRunAgainstAvailablePage(t *testing.T) {
	// absent state defaults to sold_out, so an already-available page
	// notifies immediately on the very first run
	decision := Detect(StatusAvailable, DefaultState(), false, timezone.Now())
	require.True(t, decision.ShouldNotify)
}
