package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/glasswatch/glasswatch/internal/model"
)

// reportColumns is the canonical column order shared by every SELECT.
const reportColumns = `id, lat, lng, description, photo_ref, created_at, resolved,
	cleared_ledger, still_there_ledger, sync_status, last_modified, remote_ref,
	archived, archived_at, flagged, no_glass_found`

// Get returns the report with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (model.HazardReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+reportColumns+`
		FROM hazard_reports
		WHERE id = ?
	`, id)

	rec, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.HazardReport{}, ErrNotFound
	}
	if err != nil {
		return model.HazardReport{}, ioErr("get", err)
	}
	return rec, nil
}

// GetAll returns every report ordered by id.
// Ordering by id keeps listings deterministic; UUIDv7 ids sort by creation
// time as a side effect.
func (s *Store) GetAll(ctx context.Context) ([]model.HazardReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reportColumns+`
		FROM hazard_reports
		ORDER BY id
	`)
	if err != nil {
		return nil, ioErr("get all", err)
	}
	defer rows.Close()

	var out []model.HazardReport
	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return nil, ioErr("get all", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("get all", err)
	}
	return out, nil
}

// GetPending returns every report with sync_status = 'pending', ordered by id.
// This is the push worklist for the sync engine.
func (s *Store) GetPending(ctx context.Context) ([]model.HazardReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reportColumns+`
		FROM hazard_reports
		WHERE sync_status = ?
		ORDER BY id
	`, string(model.StatusPending))
	if err != nil {
		return nil, ioErr("get pending", err)
	}
	defer rows.Close()

	var out []model.HazardReport
	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return nil, ioErr("get pending", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("get pending", err)
	}
	return out, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanReport.
type scanner interface {
	Scan(dest ...any) error
}

// scanReport decodes one row in reportColumns order.
func scanReport(row scanner) (model.HazardReport, error) {
	var (
		rec          model.HazardReport
		createdAt    string
		clearedJSON  string
		stillJSON    string
		syncStatus   string
		archivedAt   sql.NullString
		resolved     int
		archived     int
		flagged      int
		noGlassFound int
	)

	err := row.Scan(
		&rec.ID, &rec.Lat, &rec.Lng, &rec.Description, &rec.PhotoRef,
		&createdAt, &resolved,
		&clearedJSON, &stillJSON, &syncStatus, &rec.LastModified, &rec.RemoteRef,
		&archived, &archivedAt, &flagged, &noGlassFound,
	)
	if err != nil {
		return model.HazardReport{}, err
	}

	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.HazardReport{}, fmt.Errorf("created_at: %w", err)
	}
	rec.ClearedLedger, err = unmarshalLedger(clearedJSON)
	if err != nil {
		return model.HazardReport{}, fmt.Errorf("cleared_ledger: %w", err)
	}
	rec.StillThereLedger, err = unmarshalLedger(stillJSON)
	if err != nil {
		return model.HazardReport{}, fmt.Errorf("still_there_ledger: %w", err)
	}
	if archivedAt.Valid {
		at, err := parseTime(archivedAt.String)
		if err != nil {
			return model.HazardReport{}, fmt.Errorf("archived_at: %w", err)
		}
		rec.ArchivedAt = &at
	}

	rec.SyncStatus = model.SyncStatus(syncStatus)
	rec.Resolved = resolved != 0
	rec.Archived = archived != 0
	rec.Flagged = flagged != 0
	rec.NoGlassFound = noGlassFound != 0
	return rec, nil
}
