package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/glasswatch/glasswatch/internal/model"
)

const upsertReport = `
	INSERT INTO hazard_reports
	(id, lat, lng, description, photo_ref, created_at, resolved,
	 cleared_ledger, still_there_ledger, sync_status, last_modified, remote_ref,
	 archived, archived_at, flagged, no_glass_found)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		lat = excluded.lat,
		lng = excluded.lng,
		description = excluded.description,
		photo_ref = excluded.photo_ref,
		created_at = excluded.created_at,
		resolved = excluded.resolved,
		cleared_ledger = excluded.cleared_ledger,
		still_there_ledger = excluded.still_there_ledger,
		sync_status = excluded.sync_status,
		last_modified = excluded.last_modified,
		remote_ref = excluded.remote_ref,
		archived = excluded.archived,
		archived_at = excluded.archived_at,
		flagged = excluded.flagged,
		no_glass_found = excluded.no_glass_found
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Put writes a locally mutated report. It stamps LastModified (strictly
// increasing) and forces SyncStatus to pending before writing; the stamped
// fields are updated on rec in place so the caller sees the stored state.
func (s *Store) Put(ctx context.Context, rec *model.HazardReport) error {
	rec.StampModified(s.clock.Now())
	rec.SyncStatus = model.StatusPending

	if err := s.exec(ctx, s.db, *rec); err != nil {
		return ioErr("put", err)
	}
	return nil
}

// PutRemote applies a remote-origin record verbatim: the incoming
// LastModified is preserved and SyncStatus is set to synced. This is the
// only write path that does not mark the record pending.
func (s *Store) PutRemote(ctx context.Context, rec model.HazardReport) error {
	rec.SyncStatus = model.StatusSynced

	if err := s.exec(ctx, s.db, rec); err != nil {
		return ioErr("put remote", err)
	}
	return nil
}

// PutBatch persists a merged record set in a single transaction.
//
// Records are written exactly as given - the sync engine's merge has already
// decided each record's SyncStatus and LastModified, and re-stamping here
// would break the last-write-wins comparison on the next pull.
func (s *Store) PutBatch(ctx context.Context, recs []model.HazardReport) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ioErr("put batch", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, rec := range recs {
		if err := s.exec(ctx, tx, rec); err != nil {
			return ioErr("put batch", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ioErr("put batch", err)
	}
	return nil
}

// Update applies a partial change to one report inside a transaction:
// read, mutate, stamp, write back. The mutator sees a copy; returning an
// error aborts the update without touching the row.
//
// Returns the stored record after stamping.
func (s *Store) Update(ctx context.Context, id string, mutate func(*model.HazardReport) error) (model.HazardReport, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.HazardReport{}, ioErr("update", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+reportColumns+`
		FROM hazard_reports
		WHERE id = ?
	`, id)

	rec, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.HazardReport{}, ErrNotFound
	}
	if err != nil {
		return model.HazardReport{}, ioErr("update", err)
	}

	if err := mutate(&rec); err != nil {
		return model.HazardReport{}, fmt.Errorf("update %s: %w", id, err)
	}

	rec.StampModified(s.clock.Now())
	rec.SyncStatus = model.StatusPending

	if err := s.exec(ctx, tx, rec); err != nil {
		return model.HazardReport{}, ioErr("update", err)
	}

	if err := tx.Commit(); err != nil {
		return model.HazardReport{}, ioErr("update", err)
	}
	return rec, nil
}

// MarkSynced records a successful push: sets sync_status to synced and
// attaches the remote ref WITHOUT touching last_modified, so a later pull
// comparing timestamps still sees the push-time value.
func (s *Store) MarkSynced(ctx context.Context, id, remoteRef string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE hazard_reports
		SET sync_status = ?, remote_ref = ?
		WHERE id = ?
	`, string(model.StatusSynced), remoteRef, id)
	if err != nil {
		return ioErr("mark synced", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return ioErr("mark synced", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a report. Deleting an absent id is a no-op - the delete
// primitive is administrative and carries no consensus logic.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM hazard_reports WHERE id = ?`, id); err != nil {
		return ioErr("delete", err)
	}
	return nil
}

// exec writes one full record via the shared upsert.
func (s *Store) exec(ctx context.Context, ex execer, rec model.HazardReport) error {
	clearedJSON, err := marshalLedger(rec.ClearedLedger)
	if err != nil {
		return err
	}
	stillJSON, err := marshalLedger(rec.StillThereLedger)
	if err != nil {
		return err
	}

	var archivedAt any
	if rec.ArchivedAt != nil {
		archivedAt = formatTime(*rec.ArchivedAt)
	}

	_, err = ex.ExecContext(ctx, upsertReport,
		rec.ID, rec.Lat, rec.Lng, rec.Description, rec.PhotoRef,
		formatTime(rec.CreatedAt), boolToInt(rec.Resolved),
		clearedJSON, stillJSON, string(rec.SyncStatus), rec.LastModified, rec.RemoteRef,
		boolToInt(rec.Archived), archivedAt, boolToInt(rec.Flagged), boolToInt(rec.NoGlassFound),
	)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
