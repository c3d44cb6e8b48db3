package model

import (
	"time"
)

// SyncStatus tracks whether a record's local state has been acknowledged by
// the remote store.
type SyncStatus string

const (
	// StatusSynced means the remote store holds this exact record.
	StatusSynced SyncStatus = "synced"

	// StatusPending means the record has local changes not yet pushed.
	StatusPending SyncStatus = "pending"

	// StatusConflict is reserved for records whose merge could not be
	// decided by last-write-wins. The current merge rules always decide,
	// so nothing sets it today, but the column exists and round-trips.
	StatusConflict SyncStatus = "conflict"
)

// Confirmation is one device-scoped vote entry in a ledger.
type Confirmation struct {
	DeviceID string    `json:"device_id"`
	At       time.Time `json:"at"`
}

// HazardReport is the sole entity of the system: one reported physical
// hazard at a location, with its vote ledgers and sync bookkeeping.
//
// ID, Lat, Lng, Description, PhotoRef and CreatedAt are immutable after
// creation. Everything else is mutated by votes, moderation toggles,
// archive sweeps and sync merges.
type HazardReport struct {
	ID          string    `json:"id"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Description string    `json:"description"`
	PhotoRef    string    `json:"photo_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	ClearedLedger    []Confirmation `json:"cleared_ledger"`
	StillThereLedger []Confirmation `json:"still_there_ledger"`

	Resolved     bool       `json:"resolved"`
	Flagged      bool       `json:"flagged"`
	NoGlassFound bool       `json:"no_glass_found"`
	Archived     bool       `json:"archived"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`

	// SyncStatus is local bookkeeping only and never leaves the device.
	SyncStatus SyncStatus `json:"-"`

	// LastModified is Unix milliseconds. It is the sole arbiter of
	// "most recent wins" when merging against the remote store.
	LastModified int64 `json:"last_modified"`

	// RemoteRef is the handle assigned by the remote store once the
	// record has been pushed at least once.
	RemoteRef string `json:"remote_ref,omitempty"`
}

// ClearedCount returns the number of distinct "hazard is gone" confirmations.
func (r *HazardReport) ClearedCount() int {
	return len(r.ClearedLedger)
}

// StillThereCount returns the number of "hazard persists" confirmations.
func (r *HazardReport) StillThereCount() int {
	return len(r.StillThereLedger)
}

// HasCleared reports whether deviceID already has an entry in the cleared
// ledger. Cleared confirmations never expire.
func (r *HazardReport) HasCleared(deviceID string) bool {
	for _, c := range r.ClearedLedger {
		if c.DeviceID == deviceID {
			return true
		}
	}
	return false
}

// StillThereSince reports whether deviceID has a still-there confirmation
// timestamped at or after cutoff. Entries older than cutoff do not block a
// new cast.
func (r *HazardReport) StillThereSince(deviceID string, cutoff time.Time) bool {
	for _, c := range r.StillThereLedger {
		if c.DeviceID == deviceID && !c.At.Before(cutoff) {
			return true
		}
	}
	return false
}

// Active reports whether the record should appear in active views and in the
// proximity detector's candidate set. Archived records are excluded
// regardless of Resolved.
func (r *HazardReport) Active() bool {
	return !r.Resolved && !r.Archived
}

// Clone returns a deep copy. Ledger slices are copied so callers can mutate
// the clone without aliasing the original.
func (r *HazardReport) Clone() HazardReport {
	out := *r
	if r.ClearedLedger != nil {
		out.ClearedLedger = make([]Confirmation, len(r.ClearedLedger))
		copy(out.ClearedLedger, r.ClearedLedger)
	}
	if r.StillThereLedger != nil {
		out.StillThereLedger = make([]Confirmation, len(r.StillThereLedger))
		copy(out.StillThereLedger, r.StillThereLedger)
	}
	if r.ArchivedAt != nil {
		at := *r.ArchivedAt
		out.ArchivedAt = &at
	}
	return out
}

// StampModified advances LastModified to now, keeping it strictly
// increasing even when the wall clock has not moved since the last stamp.
func (r *HazardReport) StampModified(now time.Time) {
	ms := now.UnixMilli()
	if ms <= r.LastModified {
		ms = r.LastModified + 1
	}
	r.LastModified = ms
}
