package proximity

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// SuppressionTTL is how long a suppressed report id stays ignored.
// Long enough for a device to walk away from its own just-submitted report.
const SuppressionTTL = 10 * time.Minute

// SuppressionList holds temporarily ignored report ids as explicit
// (reportID, expiresAt) pairs. Expired entries are purged lazily on each
// access - no background timers to manage or leak.
type SuppressionList struct {
	clock clockwork.Clock

	mu      sync.Mutex
	expires map[string]time.Time
}

// NewSuppressionList creates an empty suppression list.
func NewSuppressionList(clock clockwork.Clock) *SuppressionList {
	return &SuppressionList{
		clock:   clock,
		expires: make(map[string]time.Time),
	}
}

// Add suppresses a report id for SuppressionTTL from now.
// Re-adding an id restarts its window.
func (l *SuppressionList) Add(reportID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expires[reportID] = l.clock.Now().Add(SuppressionTTL)
}

// Suppressed reports whether the id is currently suppressed, purging any
// expired entries encountered.
func (l *SuppressionList) Suppressed(reportID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	at, ok := l.expires[reportID]
	if !ok {
		return false
	}
	if !l.clock.Now().Before(at) {
		delete(l.expires, reportID)
		return false
	}
	return true
}

// Len returns the number of live entries, purging expired ones first.
func (l *SuppressionList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	for id, at := range l.expires {
		if !now.Before(at) {
			delete(l.expires, id)
		}
	}
	return len(l.expires)
}
