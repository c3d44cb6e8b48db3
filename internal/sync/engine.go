package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/glasswatch/glasswatch/internal/model"
	"github.com/glasswatch/glasswatch/internal/observability"
	"github.com/glasswatch/glasswatch/internal/remote"
	"github.com/glasswatch/glasswatch/internal/store"
)

// Engine reconciles the entity store against the remote store.
//
// Thread-safety model:
//   - PullMerge, PushPending, SetOnline: safe from any goroutine (the
//     engine serializes them internally).
//   - Start: call once; Stop: call once on shutdown to release the feed
//     subscription.
type Engine struct {
	store   *store.Store
	remote  remote.Store
	feed    remote.Feed
	logger  *slog.Logger
	metrics *observability.Metrics

	// mu serializes sync runs and guards the connectivity flag. Votes and
	// sync racing on the same record are arbitrated by LastModified alone,
	// but two concurrent merges writing batches would interleave.
	mu     sync.Mutex
	online bool

	sub      *remote.Subscription
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a sync engine. feed may be nil when push notifications are
// not configured; Start then skips the subscription.
func New(s *store.Store, r remote.Store, f remote.Feed, logger *slog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		store:   s,
		remote:  r,
		feed:    f,
		logger:  logger,
		metrics: metrics,
		done:    make(chan struct{}),
	}
}

// Start runs the startup pull/merge and subscribes to the remote change
// feed. The startup pull tolerates an unavailable remote - the engine just
// stays on local state until connectivity is reported.
func (e *Engine) Start(ctx context.Context) error {
	e.SetOnline(ctx, true)

	if e.feed == nil {
		return nil
	}

	sub, err := e.feed.Subscribe(ctx)
	if err != nil {
		return &RemoteUnavailableError{Err: err}
	}
	e.sub = sub

	go func() {
		defer close(e.done)
		for doc := range sub.Events() {
			e.applyNotification(ctx, doc)
		}
	}()
	return nil
}

// Stop releases the feed subscription. Safe to call once; the owner must
// call it on shutdown or the network listener leaks.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		if e.sub != nil {
			e.sub.Unsubscribe()
			<-e.done
		}
	})
}

// SetOnline records a connectivity transition. The offline-to-online edge
// triggers a pull/merge followed by a push of everything still pending.
// Pull failures are logged, not returned - the next transition retries.
func (e *Engine) SetOnline(ctx context.Context, online bool) {
	e.mu.Lock()
	wasOnline := e.online
	e.online = online
	e.mu.Unlock()

	if online {
		e.metrics.Online.Set(1)
	} else {
		e.metrics.Online.Set(0)
	}

	if online && !wasOnline {
		if _, err := e.PullMerge(ctx); err != nil {
			e.logger.Warn("sync on connectivity change failed", "error", err)
		}
	}
}

// PullMerge fetches the remote snapshot, merges it with local state,
// persists the merged batch, and then retries pending pushes.
//
// On a snapshot failure local state is untouched: the last known local
// records are returned together with a RemoteUnavailableError.
func (e *Engine) PullMerge(ctx context.Context) ([]model.HazardReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pullMergeLocked(ctx)
}

func (e *Engine) pullMergeLocked(ctx context.Context) ([]model.HazardReport, error) {
	local, err := e.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := e.remote.Snapshot(ctx)
	if err != nil {
		e.metrics.PullFailures.Inc()
		e.logger.Warn("remote snapshot failed, staying local", "error", err)
		return local, &RemoteUnavailableError{Err: err}
	}

	merged := Merge(local, snapshot, func(w mergeWinner) {
		e.metrics.MergeDecisions.WithLabelValues(string(w)).Inc()
	})

	if err := e.store.PutBatch(ctx, merged); err != nil {
		return local, err
	}
	e.metrics.Pulls.Inc()
	e.logger.Info("pull/merge complete", "local", len(local), "remote", len(snapshot), "merged", len(merged))

	// After every pull/merge, pending pushes are attempted again. A
	// PartialSyncError propagates so the caller sees the failure count,
	// but the merge itself has already been persisted.
	if _, err := e.pushPendingLocked(ctx); err != nil {
		return merged, err
	}
	return merged, nil
}

// PushPending pushes every locally pending record as a full-document
// overwrite. Per-record failures leave that record pending for a later
// retry and never block sibling pushes; they are aggregated into a
// PartialSyncError count. Returns the number of records pushed.
func (e *Engine) PushPending(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pushPendingLocked(ctx)
}

func (e *Engine) pushPendingLocked(ctx context.Context) (int, error) {
	pending, err := e.store.GetPending(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	pushed, failed := 0, 0
	for _, rec := range pending {
		ref, err := e.remote.Put(ctx, remote.FromReport(rec))
		if err != nil {
			failed++
			e.metrics.PushFailures.Inc()
			e.logger.Warn("push failed, record stays pending", "report_id", rec.ID, "error", err)
			continue
		}

		if err := e.store.MarkSynced(ctx, rec.ID, ref); err != nil {
			return pushed, err
		}
		pushed++
		e.metrics.RecordsPushed.Inc()
	}

	if failed > 0 {
		return pushed, &PartialSyncError{Failed: failed}
	}
	return pushed, nil
}

// applyNotification applies one live remote change. Notifications are only
// applied while online; one arriving offline is dropped outright - there is
// no staleness tracking, the next full pull covers it.
func (e *Engine) applyNotification(ctx context.Context, doc remote.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.online {
		e.metrics.FeedDropped.Inc()
		e.logger.Debug("notification dropped while offline", "report_id", doc.ID)
		return
	}

	local, err := e.store.Get(ctx, doc.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		e.logger.Warn("notification apply failed", "report_id", doc.ID, "error", err)
		return
	}

	var localSet []model.HazardReport
	if err == nil {
		localSet = []model.HazardReport{local}
	}

	merged := Merge(localSet, []remote.Document{doc}, func(w mergeWinner) {
		e.metrics.MergeDecisions.WithLabelValues(string(w)).Inc()
	})

	if err := e.store.PutBatch(ctx, merged); err != nil {
		e.logger.Warn("notification apply failed", "report_id", doc.ID, "error", err)
		return
	}
	e.metrics.FeedApplied.Inc()
}
