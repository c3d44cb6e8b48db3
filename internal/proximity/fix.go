package proximity

import (
	"context"
	"time"
)

// Fix is one location sample, or an error from the platform's location
// service. Err set means Lat/Lng are meaningless for this sample.
type Fix struct {
	Lat float64
	Lng float64
	At  time.Time
	Err error
}

// FixSource is the platform location stream.
type FixSource interface {
	// Watch starts delivering fixes. The owner must call Unsubscribe on
	// the returned watch exactly once on shutdown; failing to do so leaks
	// the OS location listener.
	Watch(ctx context.Context) (*Watch, error)
}

// Watch is a live location subscription.
type Watch struct {
	fixes       chan Fix
	unsubscribe func()
}

// NewWatch wires a watch around a delivery channel and a cancel function.
// Intended for FixSource implementations.
func NewWatch(fixes chan Fix, unsubscribe func()) *Watch {
	return &Watch{fixes: fixes, unsubscribe: unsubscribe}
}

// Fixes returns the delivery channel. Closed after Unsubscribe.
func (w *Watch) Fixes() <-chan Fix {
	return w.fixes
}

// Unsubscribe releases the location listener.
func (w *Watch) Unsubscribe() {
	w.unsubscribe()
}
