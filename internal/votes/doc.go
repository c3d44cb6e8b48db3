// Package votes implements the quorum voting state machine that turns
// independent, device-scoped confirmations into a shared hazard-resolution
// state.
//
// Two ledgers with asymmetric rules:
//
//   - Cleared: one entry per device, ever. Three distinct devices resolve
//     the hazard.
//   - Still-there: one entry per device within a rolling 24 hour cooldown.
//     Two entries form a rebuttal: the cleared ledger is erased and the
//     hazard is forced back to unresolved, whatever its prior state.
//
// The rebuttal rule is intentionally non-commutative with the cleared rule,
// favoring caution over consensus stability: a resolved hazard can always be
// re-opened by two fresh still-there votes.
//
// A duplicate vote is an expected outcome, not an error - both cast
// operations return a structured Result instead of failing.
package votes
