package votes

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/glasswatch/glasswatch/internal/model"
	"github.com/glasswatch/glasswatch/internal/store"
)

const (
	// ClearedThreshold is the number of distinct devices whose cleared
	// votes resolve a hazard.
	ClearedThreshold = 3

	// RebuttalThreshold is the number of still-there votes that erase the
	// cleared ledger and un-resolve a hazard.
	RebuttalThreshold = 2

	// StillThereCooldown is how long one device's still-there vote blocks
	// another from the same device.
	StillThereCooldown = 24 * time.Hour

	// ArchiveAfter is how long a resolved report must sit unmodified
	// before the sweep archives it.
	ArchiveAfter = 7 * 24 * time.Hour
)

// Result is the structured outcome of a cast operation.
// AlreadyConfirmed is an expected rejection, not an error: the vote was a
// duplicate and no state changed.
type Result struct {
	Success          bool
	AlreadyConfirmed bool
}

// Engine applies vote and moderation transitions to hazard reports.
// All reads and writes go through the entity store; the engine holds no
// report state of its own.
type Engine struct {
	store  *store.Store
	ids    model.IDGenerator
	clock  clockwork.Clock
	logger *slog.Logger
}

// New creates a voting engine over the given store.
func New(s *store.Store, ids model.IDGenerator, clock clockwork.Clock, logger *slog.Logger) *Engine {
	return &Engine{store: s, ids: ids, clock: clock, logger: logger}
}

// Submit creates a new hazard report with default ledgers and sync fields
// and persists it as pending. Returns the stored record.
func (e *Engine) Submit(ctx context.Context, lat, lng float64, description, photoRef string) (model.HazardReport, error) {
	rec := model.HazardReport{
		ID:          e.ids.NewID(),
		Lat:         lat,
		Lng:         lng,
		Description: description,
		PhotoRef:    photoRef,
		CreatedAt:   e.clock.Now().UTC(),
	}

	if err := e.store.Put(ctx, &rec); err != nil {
		return model.HazardReport{}, err
	}

	e.logger.Info("report submitted", "report_id", rec.ID)
	return rec, nil
}

// CastCleared records a "hazard is gone" confirmation from deviceID.
//
// Rejected with AlreadyConfirmed when the device has ever voted cleared on
// this report. On the vote that reaches ClearedThreshold distinct devices,
// the report becomes resolved.
func (e *Engine) CastCleared(ctx context.Context, reportID, deviceID string) (Result, error) {
	var res Result
	_, err := e.store.Update(ctx, reportID, func(r *model.HazardReport) error {
		if r.HasCleared(deviceID) {
			res = Result{AlreadyConfirmed: true}
			return errNoChange
		}

		r.ClearedLedger = append(r.ClearedLedger, model.Confirmation{
			DeviceID: deviceID,
			At:       e.clock.Now().UTC(),
		})
		if r.ClearedCount() >= ClearedThreshold {
			r.Resolved = true
		}
		res = Result{Success: true}
		return nil
	})
	if err != nil {
		return e.settle(res, err, "cleared", reportID, deviceID)
	}
	return e.settle(res, nil, "cleared", reportID, deviceID)
}

// CastStillThere records a "hazard persists" confirmation from deviceID.
//
// Rejected with AlreadyConfirmed when the device has a still-there vote
// within the cooldown window; older votes from the same device do not block.
// On the vote that reaches RebuttalThreshold, the cleared ledger is erased
// and Resolved is forced false regardless of its prior value.
func (e *Engine) CastStillThere(ctx context.Context, reportID, deviceID string) (Result, error) {
	now := e.clock.Now().UTC()
	cutoff := now.Add(-StillThereCooldown)

	var res Result
	_, err := e.store.Update(ctx, reportID, func(r *model.HazardReport) error {
		if r.StillThereSince(deviceID, cutoff) {
			res = Result{AlreadyConfirmed: true}
			return errNoChange
		}

		r.StillThereLedger = append(r.StillThereLedger, model.Confirmation{
			DeviceID: deviceID,
			At:       now,
		})
		if r.StillThereCount() >= RebuttalThreshold {
			// Rebuttal: erase clearing progress entirely.
			r.ClearedLedger = nil
			r.Resolved = false
		}
		res = Result{Success: true}
		return nil
	})
	if err != nil {
		return e.settle(res, err, "still_there", reportID, deviceID)
	}
	return e.settle(res, nil, "still_there", reportID, deviceID)
}

// SetResolved sets the resolution state of one report directly, bypassing
// the vote threshold. This is the explicit form of the administrative
// override, for trusted operators only.
func (e *Engine) SetResolved(ctx context.Context, reportID string, resolved bool) error {
	_, err := e.store.Update(ctx, reportID, func(r *model.HazardReport) error {
		r.Resolved = resolved
		return nil
	})
	return err
}

// BulkMarkResolved force-resolves each id, bypassing the vote threshold.
// Failures are per-id: one missing report does not abort the rest. Returns
// the ids that were actually updated.
func (e *Engine) BulkMarkResolved(ctx context.Context, ids []string) ([]string, error) {
	var done []string
	for _, id := range ids {
		if err := e.SetResolved(ctx, id, true); err != nil {
			if store.IsIOError(err) {
				return done, err
			}
			e.logger.Warn("bulk resolve skipped", "report_id", id, "error", err)
			continue
		}
		done = append(done, id)
	}
	return done, nil
}

// ToggleFlagged flips the flagged moderation bit.
func (e *Engine) ToggleFlagged(ctx context.Context, reportID string) (bool, error) {
	var flagged bool
	_, err := e.store.Update(ctx, reportID, func(r *model.HazardReport) error {
		r.Flagged = !r.Flagged
		flagged = r.Flagged
		return nil
	})
	return flagged, err
}

// ToggleNoGlassFound flips the no-glass-found moderation bit.
func (e *Engine) ToggleNoGlassFound(ctx context.Context, reportID string) (bool, error) {
	var noGlass bool
	_, err := e.store.Update(ctx, reportID, func(r *model.HazardReport) error {
		r.NoGlassFound = !r.NoGlassFound
		noGlass = r.NoGlassFound
		return nil
	})
	return noGlass, err
}

// settle translates the errNoChange sentinel into a clean rejection and
// logs the outcome.
func (e *Engine) settle(res Result, err error, kind, reportID, deviceID string) (Result, error) {
	if err != nil && !isNoChange(err) {
		return Result{}, err
	}
	if res.AlreadyConfirmed {
		e.logger.Debug("duplicate vote", "kind", kind, "report_id", reportID, "device_id", deviceID)
		return res, nil
	}
	e.logger.Info("vote cast", "kind", kind, "report_id", reportID, "device_id", deviceID)
	return res, nil
}
