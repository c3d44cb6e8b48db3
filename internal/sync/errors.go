package sync

import (
	"errors"
	"fmt"
)

// RemoteUnavailableError marks a network or permission failure reaching the
// remote store. The engine has already degraded to local-only operation;
// the caller retries on the next connectivity-online transition.
type RemoteUnavailableError struct {
	Err error
}

// Error implements the error interface.
func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote unavailable: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *RemoteUnavailableError) Unwrap() error {
	return e.Err
}

// IsRemoteUnavailable returns true if the error marks a failed remote
// fetch. Uses errors.As to handle wrapped errors.
func IsRemoteUnavailable(err error) bool {
	var re *RemoteUnavailableError
	return errors.As(err, &re)
}

// PartialSyncError aggregates per-record push failures into one count.
// It is advisory: the records that failed stay pending and are retried on
// the next push run, and sibling pushes were not aborted.
type PartialSyncError struct {
	// Failed is the number of records that could not be pushed.
	Failed int
}

// Error implements the error interface.
func (e *PartialSyncError) Error() string {
	return fmt.Sprintf("partial sync: %d record(s) failed to push", e.Failed)
}

// IsPartialSync returns true if the error is an aggregated push failure.
func IsPartialSync(err error) bool {
	var pe *PartialSyncError
	return errors.As(err, &pe)
}
