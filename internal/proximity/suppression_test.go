package proximity

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestSuppressionList_EntryExpires(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	list := NewSuppressionList(clock)

	list.Add("haz-1")
	require.True(t, list.Suppressed("haz-1"))
	require.False(t, list.Suppressed("haz-2"))

	clock.Advance(SuppressionTTL - time.Second)
	require.True(t, list.Suppressed("haz-1"))

	clock.Advance(time.Second)
	require.False(t, list.Suppressed("haz-1"))
	require.Zero(t, list.Len(), "expired entry must be purged")
}

func TestSuppressionList_ReAddRestartsWindow(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	list := NewSuppressionList(clock)

	list.Add("haz-1")
	clock.Advance(SuppressionTTL - time.Minute)
	list.Add("haz-1")

	clock.Advance(5 * time.Minute)
	require.True(t, list.Suppressed("haz-1"), "re-add must restart the ten minute window")
}

func TestSuppressionList_LenPurgesLazily(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	list := NewSuppressionList(clock)

	list.Add("haz-1")
	clock.Advance(SuppressionTTL / 2)
	list.Add("haz-2")
	require.Equal(t, 2, list.Len())

	clock.Advance(SuppressionTTL / 2)
	require.Equal(t, 1, list.Len(), "only the younger entry survives")
}
