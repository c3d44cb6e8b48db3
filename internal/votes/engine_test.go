package votes

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/glasswatch/glasswatch/internal/model"
	"github.com/glasswatch/glasswatch/internal/observability"
	"github.com/glasswatch/glasswatch/internal/store"
)

var testEpoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *store.Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testEpoch)
	s, err := store.Open(filepath.Join(t.TempDir(), "votes.db"), clock)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ids := model.NewFixedGenerator("haz-1", "haz-2", "haz-3", "haz-4")
	e := New(s, ids, clock, observability.NewNopLogger())
	return e, s, clock
}

func submit(t *testing.T, e *Engine) model.HazardReport {
	t.Helper()
	rec, err := e.Submit(context.Background(), 52.52, 13.405, "glass on path", "")
	require.NoError(t, err)
	return rec
}

func TestSubmit_Defaults(t *testing.T) {
	e, s, _ := newTestEngine(t)

	rec := submit(t, e)
	require.Equal(t, "haz-1", rec.ID)
	require.Equal(t, model.StatusPending, rec.SyncStatus)

	stored, err := s.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Zero(t, stored.ClearedCount())
	require.Zero(t, stored.StillThereCount())
	require.False(t, stored.Resolved)
	require.Equal(t, testEpoch.UnixMilli(), stored.LastModified)
}

func TestCastCleared_ResolvesOnThirdDistinctDevice(t *testing.T) {
	e, s, _ := newTestEngine(t)
	ctx := context.Background()
	rec := submit(t, e)

	for i, device := range []string{"dev-a", "dev-b"} {
		res, err := e.CastCleared(ctx, rec.ID, device)
		require.NoError(t, err)
		require.True(t, res.Success)

		got, err := s.Get(ctx, rec.ID)
		require.NoError(t, err)
		require.Equal(t, i+1, got.ClearedCount())
		require.False(t, got.Resolved, "resolved before threshold")
	}

	res, err := e.CastCleared(ctx, rec.ID, "dev-c")
	require.NoError(t, err)
	require.True(t, res.Success)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.ClearedCount())
	require.True(t, got.Resolved, "third distinct device must resolve")
}

func TestCastCleared_SameDeviceAlwaysDuplicate(t *testing.T) {
	e, s, _ := newTestEngine(t)
	ctx := context.Background()
	rec := submit(t, e)

	res, err := e.CastCleared(ctx, rec.ID, "dev-a")
	require.NoError(t, err)
	require.True(t, res.Success)

	for range 3 {
		res, err = e.CastCleared(ctx, rec.ID, "dev-a")
		require.NoError(t, err)
		require.False(t, res.Success)
		require.True(t, res.AlreadyConfirmed)
	}

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.ClearedCount(), "duplicates must not change the count")
}

func TestCastStillThere_RebuttalErasesClearingProgress(t *testing.T) {
	e, s, _ := newTestEngine(t)
	ctx := context.Background()
	rec := submit(t, e)

	for _, device := range []string{"dev-a", "dev-b", "dev-c"} {
		_, err := e.CastCleared(ctx, rec.ID, device)
		require.NoError(t, err)
	}
	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, got.Resolved)

	// First still-there vote: no rebuttal yet.
	res, err := e.CastStillThere(ctx, rec.ID, "dev-x")
	require.NoError(t, err)
	require.True(t, res.Success)
	got, err = s.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, got.Resolved)
	require.Equal(t, 3, got.ClearedCount())

	// Second distinct device triggers the rebuttal.
	res, err = e.CastStillThere(ctx, rec.ID, "dev-y")
	require.NoError(t, err)
	require.True(t, res.Success)

	got, err = s.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.False(t, got.Resolved, "rebuttal must un-resolve")
	require.Zero(t, got.ClearedCount(), "rebuttal must erase the cleared ledger")
	require.Equal(t, 2, got.StillThereCount())
}

func TestCastStillThere_CooldownWindow(t *testing.T) {
	e, s, clock := newTestEngine(t)
	ctx := context.Background()
	rec := submit(t, e)

	res, err := e.CastStillThere(ctx, rec.ID, "dev-a")
	require.NoError(t, err)
	require.True(t, res.Success)

	// Within 24h: duplicate.
	clock.Advance(23 * time.Hour)
	res, err = e.CastStillThere(ctx, rec.ID, "dev-a")
	require.NoError(t, err)
	require.True(t, res.AlreadyConfirmed)

	// Past the window: accepted again.
	clock.Advance(2 * time.Hour)
	res, err = e.CastStillThere(ctx, rec.ID, "dev-a")
	require.NoError(t, err)
	require.True(t, res.Success)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.StillThereCount())
}

func TestCast_UnknownReport(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.CastCleared(context.Background(), "missing", "dev-a")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetResolved_BypassesThreshold(t *testing.T) {
	e, s, _ := newTestEngine(t)
	ctx := context.Background()
	rec := submit(t, e)

	require.NoError(t, e.SetResolved(ctx, rec.ID, true))
	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, got.Resolved)
	require.Zero(t, got.ClearedCount(), "override must not fabricate votes")

	require.NoError(t, e.SetResolved(ctx, rec.ID, false))
	got, err = s.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.False(t, got.Resolved)
}

func TestBulkMarkResolved_SkipsMissingIDs(t *testing.T) {
	e, s, _ := newTestEngine(t)
	ctx := context.Background()
	a := submit(t, e)
	b := submit(t, e)

	done, err := e.BulkMarkResolved(ctx, []string{a.ID, "missing", b.ID})
	require.NoError(t, err)
	require.Equal(t, []string{a.ID, b.ID}, done)

	for _, id := range []string{a.ID, b.ID} {
		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, got.Resolved)
	}
}

func TestToggles_Independent(t *testing.T) {
	e, s, _ := newTestEngine(t)
	ctx := context.Background()
	rec := submit(t, e)

	flagged, err := e.ToggleFlagged(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, flagged)

	noGlass, err := e.ToggleNoGlassFound(ctx, rec.ID)
	require.NoError(t, err)
	require.True(t, noGlass)

	flagged, err = e.ToggleFlagged(ctx, rec.ID)
	require.NoError(t, err)
	require.False(t, flagged)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.False(t, got.Flagged)
	require.True(t, got.NoGlassFound)
	require.Zero(t, got.ClearedCount(), "toggles must not touch the ledgers")
}

func TestAutoArchiveSweep_Idempotent(t *testing.T) {
	e, s, clock := newTestEngine(t)
	ctx := context.Background()

	old := submit(t, e)    // resolved, 8 days stale -> archived
	recent := submit(t, e) // resolved, 6 days stale -> kept
	open := submit(t, e)   // unresolved -> kept

	require.NoError(t, e.SetResolved(ctx, old.ID, true))
	clock.Advance(2 * 24 * time.Hour)
	require.NoError(t, e.SetResolved(ctx, recent.ID, true))
	clock.Advance(6 * 24 * time.Hour)

	archived, err := e.AutoArchiveSweep(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{old.ID}, archived)

	got, err := s.Get(ctx, old.ID)
	require.NoError(t, err)
	require.True(t, got.Archived)
	require.NotNil(t, got.ArchivedAt)
	require.Equal(t, model.StatusPending, got.SyncStatus, "archival must sync out")

	// Second pass right away: nothing left to do.
	archived, err = e.AutoArchiveSweep(ctx)
	require.NoError(t, err)
	require.Empty(t, archived)

	got, err = s.Get(ctx, recent.ID)
	require.NoError(t, err)
	require.False(t, got.Archived, "6 day old report must not be archived")

	got, err = s.Get(ctx, open.ID)
	require.NoError(t, err)
	require.False(t, got.Archived, "unresolved report must never be archived")
}
