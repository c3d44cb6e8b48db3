package sync

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/glasswatch/glasswatch/internal/model"
	"github.com/glasswatch/glasswatch/internal/observability"
	"github.com/glasswatch/glasswatch/internal/store"
	"github.com/glasswatch/glasswatch/internal/testutil"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store, *testutil.FakeRemote, *observability.Metrics) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s, err := store.Open(filepath.Join(t.TempDir(), "sync.db"), clock)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	fake := testutil.NewFakeRemote()
	metrics := observability.NewMetricsForTesting()
	e := New(s, fake, fake, observability.NewNopLogger(), metrics)
	return e, s, fake, metrics
}

func putPending(t *testing.T, s *store.Store, id, description string) model.HazardReport {
	t.Helper()
	rec := model.HazardReport{
		ID:          id,
		Lat:         52.52,
		Lng:         13.405,
		Description: description,
		CreatedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Put(context.Background(), &rec))
	return rec
}

func TestPushPending_MarksRecordsSynced(t *testing.T) {
	e, s, fake, _ := newTestEngine(t)
	ctx := context.Background()
	putPending(t, s, "haz-1", "first")
	putPending(t, s, "haz-2", "second")

	pushed, err := e.PushPending(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, pushed)

	for _, id := range []string{"haz-1", "haz-2"} {
		got, err := s.Get(ctx, id)
		require.NoError(t, err)
		require.Equal(t, model.StatusSynced, got.SyncStatus)
		require.Equal(t, "hazards/"+id, got.RemoteRef)

		_, ok := fake.Doc(id)
		require.True(t, ok, "record must exist remotely after push")
	}

	pending, err := s.GetPending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestPushPending_FailureIsolatedPerRecord(t *testing.T) {
	e, s, fake, _ := newTestEngine(t)
	ctx := context.Background()
	putPending(t, s, "haz-1", "pushes fine")
	putPending(t, s, "haz-2", "push fails")
	fake.FailPut["haz-2"] = true

	pushed, err := e.PushPending(ctx)
	require.Equal(t, 1, pushed)

	var partial *PartialSyncError
	require.ErrorAs(t, err, &partial)
	require.Equal(t, 1, partial.Failed)
	require.True(t, IsPartialSync(err))

	good, err := s.Get(ctx, "haz-1")
	require.NoError(t, err)
	require.Equal(t, model.StatusSynced, good.SyncStatus)

	bad, err := s.Get(ctx, "haz-2")
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, bad.SyncStatus, "failed record stays pending for retry")
}

func TestPullMerge_SnapshotFailureKeepsLocalState(t *testing.T) {
	e, s, fake, _ := newTestEngine(t)
	ctx := context.Background()
	rec := putPending(t, s, "haz-1", "local only")
	fake.FailSnapshot = true

	got, err := e.PullMerge(ctx)
	require.True(t, IsRemoteUnavailable(err))
	require.Len(t, got, 1)
	require.Equal(t, rec.ID, got[0].ID)

	stored, err := s.Get(ctx, "haz-1")
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, stored.SyncStatus, "failed pull must not touch local state")
}

func TestPullMerge_AdoptsRemoteAndPushesPending(t *testing.T) {
	e, s, fake, _ := newTestEngine(t)
	ctx := context.Background()
	putPending(t, s, "haz-1", "local pending")
	fake.Seed(remoteDoc("haz-2", 500))

	merged, err := e.PullMerge(ctx)
	require.NoError(t, err)
	require.Len(t, merged, 2)

	adopted, err := s.Get(ctx, "haz-2")
	require.NoError(t, err)
	require.Equal(t, model.StatusSynced, adopted.SyncStatus)
	require.Equal(t, "remote copy", adopted.Description)

	// The pull finished with a push of what was still pending.
	local, err := s.Get(ctx, "haz-1")
	require.NoError(t, err)
	require.Equal(t, model.StatusSynced, local.SyncStatus)
	_, ok := fake.Doc("haz-1")
	require.True(t, ok)
}

func TestPullMerge_PropagatesPartialPushFailure(t *testing.T) {
	e, s, fake, _ := newTestEngine(t)
	ctx := context.Background()
	putPending(t, s, "haz-1", "push fails")
	fake.FailPut["haz-1"] = true

	merged, err := e.PullMerge(ctx)
	require.True(t, IsPartialSync(err))
	require.Len(t, merged, 1, "merge result is returned even when the push trails off")
}

func TestSetOnline_EdgeTriggersPull(t *testing.T) {
	e, s, fake, _ := newTestEngine(t)
	ctx := context.Background()
	fake.Seed(remoteDoc("haz-7", 500))

	e.SetOnline(ctx, false)
	e.SetOnline(ctx, true)

	got, err := s.Get(ctx, "haz-7")
	require.NoError(t, err)
	require.Equal(t, model.StatusSynced, got.SyncStatus)

	// Online-to-online is not an edge: reseeding must not leak through.
	fake.Seed(remoteDoc("haz-8", 500))
	e.SetOnline(ctx, true)
	_, err = s.Get(ctx, "haz-8")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestFeed_NotificationAppliedWhileOnline(t *testing.T) {
	e, s, fake, metrics := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Start(ctx))
	defer e.Stop()

	fake.Publish(remoteDoc("haz-5", 500))

	require.Eventually(t, func() bool {
		_, err := s.Get(ctx, "haz-5")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	got, err := s.Get(ctx, "haz-5")
	require.NoError(t, err)
	require.Equal(t, model.StatusSynced, got.SyncStatus)
	require.EqualValues(t, 1, promtest.ToFloat64(metrics.FeedApplied))
}

func TestFeed_NotificationDroppedWhileOffline(t *testing.T) {
	e, s, fake, metrics := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Start(ctx))
	defer e.Stop()
	e.SetOnline(ctx, false)

	fake.Publish(remoteDoc("haz-6", 500))

	require.Eventually(t, func() bool {
		return promtest.ToFloat64(metrics.FeedDropped) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err := s.Get(ctx, "haz-6")
	require.ErrorIs(t, err, store.ErrNotFound, "offline notifications are dropped, not queued")
}

func TestStop_ReleasesSubscription(t *testing.T) {
	e, _, fake, _ := newTestEngine(t)
	require.NoError(t, e.Start(context.Background()))

	e.Stop()
	e.Stop() // second call is a no-op

	// Publishing after Stop must not panic or block: no subscriber is left.
	fake.Publish(remoteDoc("haz-9", 500))
}

func TestFeed_StaleNotificationDoesNotClobberNewerLocal(t *testing.T) {
	e, s, fake, _ := newTestEngine(t)
	ctx := context.Background()
	rec := putPending(t, s, "haz-1", "newer local edit")

	require.NoError(t, e.Start(ctx))
	defer e.Stop()

	fake.Publish(remoteDoc("haz-1", rec.LastModified-1))

	// Give the feed goroutine a chance to process, then assert nothing moved.
	require.Eventually(t, func() bool {
		got, err := s.Get(ctx, "haz-1")
		return err == nil && got.Description == "newer local edit"
	}, 2*time.Second, 10*time.Millisecond)

	got, err := s.Get(ctx, "haz-1")
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, got.SyncStatus)
}
