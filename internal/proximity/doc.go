// Package proximity turns a noisy location stream into debounced,
// hysteresis-stable hazard alerts.
//
// Per fix, rate-limited to one per second: compute great-circle distance to
// every active, non-suppressed report. A report is in-range at 3 m, and
// stays in-range up to 6 m once entered - the two radii prevent flicker at
// the boundary. The detector latches a single alert on the first entry and
// re-arms only after the in-range set empties.
//
// The detector never mutates the store; it reads the current report list
// and is fully independent of sync timing.
package proximity
