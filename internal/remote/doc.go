// Package remote defines the boundary to the authoritative remote store.
//
// The wire shape is one full document per report at a stable path keyed by
// id. Writes are whole-document overwrites, never partial patches; the
// server assigns a timestamp on every write.
//
// Two capabilities are split so implementations and fakes stay small:
//
//   - Store: snapshot reads and document writes (request/response)
//   - Feed: push-based change notifications (long-lived subscription)
//
// The production pairing is an HTTP store plus a Kafka change feed. Tests
// use in-memory fakes.
package remote
