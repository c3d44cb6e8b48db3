// Package store provides durable storage for hazard reports.
//
// Uses SQLite with WAL mode for concurrent read access. One table, keyed by
// report id, evolved through additive-only schema migrations tracked in
// PRAGMA user_version.
//
// Every mutating call stamps LastModified and marks the record pending,
// except the remote-origin apply paths (PutRemote, PutBatch entries flagged
// as remote) which mark the record synced and preserve the incoming
// timestamp. This is the single rule the sync engine's last-write-wins
// merge depends on.
package store
