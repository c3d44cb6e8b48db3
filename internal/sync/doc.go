// Package sync reconciles the local entity store with the remote
// authoritative store under an eventual-consistency, last-write-wins
// discipline.
//
// Three flows share one merge rule:
//
//   - Pull: fetch the full remote snapshot, merge it against local state,
//     persist the merged set as a batch.
//   - Push: overwrite the full remote document for every locally pending
//     record. Failures are isolated per record and reported as a count.
//   - Feed: apply push-based remote change notifications one document at a
//     time, only while online; notifications arriving offline are dropped.
//
// The merge rule, given a record present on both sides: remote wins iff its
// LastModified is strictly greater; local wins iff its LastModified is
// greater or equal AND the record is still pending; otherwise the remote
// copy is a stale echo of an already-acknowledged local write and local
// state is kept as-is. LastModified comparison is the sole arbiter of
// "most recent wins" - no vector clocks, no per-field merging.
//
// A hard failure fetching the snapshot never corrupts local state: the
// engine returns the last known local snapshot and a RemoteUnavailableError
// the caller can retry on the next connectivity transition.
package sync
