package testutil

import "sync"

// SpyHaptic counts haptic pulses.
type SpyHaptic struct {
	mu     sync.Mutex
	pulses int
}

// Pulse implements proximity.Haptic.
func (h *SpyHaptic) Pulse() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pulses++
}

// Pulses returns the number of pulses fired.
func (h *SpyHaptic) Pulses() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pulses
}

// SpyNotifier records every notification call.
type SpyNotifier struct {
	mu    sync.Mutex
	calls [][]string
}

// Notify implements proximity.Notifier.
func (n *SpyNotifier) Notify(reportIDs []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]string, len(reportIDs))
	copy(ids, reportIDs)
	n.calls = append(n.calls, ids)
}

// Calls returns the recorded notifications in order.
func (n *SpyNotifier) Calls() [][]string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([][]string, len(n.calls))
	copy(out, n.calls)
	return out
}
