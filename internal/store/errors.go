package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get and Update when no row exists for the id.
var ErrNotFound = errors.New("report not found")

// IOError represents a local persistence failure.
//
// IO errors are surfaced to the caller and abort the current call only;
// they never invalidate the store handle itself.
type IOError struct {
	// Op names the failed store operation, e.g. "get" or "put batch".
	Op string

	// Err is the underlying driver error.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *IOError) Unwrap() error {
	return e.Err
}

// IsIOError returns true if the error is a local persistence failure.
// Uses errors.As to handle wrapped errors.
func IsIOError(err error) bool {
	var ioe *IOError
	return errors.As(err, &ioe)
}

// MigrationError represents a failed schema migration.
//
// A migration failure is fatal for that schema version: the version's
// transaction is rolled back, so rows are never left partially migrated,
// and Open fails.
type MigrationError struct {
	// Version is the schema version that failed to apply.
	Version int

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *MigrationError) Error() string {
	return fmt.Sprintf("migrate to v%d: %v", e.Version, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *MigrationError) Unwrap() error {
	return e.Err
}

// IsMigrationError returns true if the error is a schema migration failure.
func IsMigrationError(err error) bool {
	var me *MigrationError
	return errors.As(err, &me)
}

func ioErr(op string, err error) error {
	return &IOError{Op: op, Err: err}
}
