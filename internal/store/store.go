package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Base fields (id, lat, lng, description, photo_ref, created_at, resolved)
// 2 - Added vote ledgers and sync fields
// 3 - Added archived, archived_at, flagged
// 4 - Added no_glass_found
const currentSchemaVersion = 4

// Store provides durable storage for hazard reports.
type Store struct {
	db    *sql.DB
	clock clockwork.Clock
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
// The clock is used to stamp LastModified on mutations; pass
// clockwork.NewRealClock() in production.
func Open(path string, clock clockwork.Clock) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db, clock); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, clock: clock}, nil
}

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates the base table if needed and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB, clock clockwork.Clock) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return runMigrations(db, clock)
}

// runMigrations applies incremental schema migrations based on user_version.
//
// Each version runs in its own transaction: either every row carries the
// version's new columns afterwards, or the version is rolled back whole and
// Open fails with a MigrationError. Migrations are additive-only - no
// version drops or renames existing data.
func runMigrations(db *sql.DB, clock clockwork.Clock) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	type migration struct {
		version int
		apply   func(tx *sql.Tx) error
	}

	migrations := []migration{
		{2, func(tx *sql.Tx) error { return migrateToV2(tx, clock) }},
		{3, migrateToV3},
		{4, migrateToV4},
	}

	if version < 1 {
		// Fresh database: schema.sql already created the base table.
		version = 1
	}

	for _, m := range migrations {
		if version >= m.version {
			continue
		}
		if err := applyVersion(db, m.version, m.apply); err != nil {
			return err
		}
		version = m.version
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// applyVersion runs one migration inside a transaction and records the new
// user_version before committing, so a crash mid-migration leaves the
// database at the previous version with untouched rows.
func applyVersion(db *sql.DB, version int, apply func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return &MigrationError{Version: version, Err: err}
	}
	defer tx.Rollback() // No-op if committed

	if err := apply(tx); err != nil {
		return &MigrationError{Version: version, Err: err}
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return &MigrationError{Version: version, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &MigrationError{Version: version, Err: err}
	}

	return nil
}

// migrateToV2 adds the vote ledgers and sync bookkeeping.
// Existing rows are backfilled with empty ledgers, status "pending" and a
// LastModified of migration time, so pre-sync records are pushed on the
// first sync run rather than silently skipped.
func migrateToV2(tx *sql.Tx, clock clockwork.Clock) error {
	stmts := []string{
		`ALTER TABLE hazard_reports ADD COLUMN cleared_ledger TEXT NOT NULL DEFAULT '[]'`,
		`ALTER TABLE hazard_reports ADD COLUMN still_there_ledger TEXT NOT NULL DEFAULT '[]'`,
		`ALTER TABLE hazard_reports ADD COLUMN sync_status TEXT NOT NULL DEFAULT 'pending'`,
		`ALTER TABLE hazard_reports ADD COLUMN last_modified INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE hazard_reports ADD COLUMN remote_ref TEXT NOT NULL DEFAULT ''`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	// DEFAULT must be constant in SQLite, so the timestamp backfill is a
	// separate UPDATE.
	_, err := tx.Exec(`UPDATE hazard_reports SET last_modified = ? WHERE last_modified = 0`,
		clock.Now().UnixMilli())
	return err
}

// migrateToV3 adds the archive lifecycle flags and the moderation flag.
func migrateToV3(tx *sql.Tx) error {
	stmts := []string{
		`ALTER TABLE hazard_reports ADD COLUMN archived INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE hazard_reports ADD COLUMN archived_at TEXT`,
		`ALTER TABLE hazard_reports ADD COLUMN flagged INTEGER NOT NULL DEFAULT 0`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrateToV4 adds the no-glass-found moderation flag.
func migrateToV4(tx *sql.Tx) error {
	_, err := tx.Exec(`ALTER TABLE hazard_reports ADD COLUMN no_glass_found INTEGER NOT NULL DEFAULT 0`)
	return err
}

// SchemaVersion returns the database's current user_version.
// Used by the CLI and by migration tests.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}
