package remote

import (
	"context"
	"time"

	"github.com/glasswatch/glasswatch/internal/model"
)

// Document is the remote wire shape of one hazard report: every report
// field except local sync bookkeeping, plus the server-assigned write
// timestamp.
type Document struct {
	ID          string    `json:"id"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Description string    `json:"description"`
	PhotoRef    string    `json:"photo_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	ClearedLedger    []model.Confirmation `json:"cleared_ledger"`
	StillThereLedger []model.Confirmation `json:"still_there_ledger"`

	Resolved     bool       `json:"resolved"`
	Flagged      bool       `json:"flagged"`
	NoGlassFound bool       `json:"no_glass_found"`
	Archived     bool       `json:"archived"`
	ArchivedAt   *time.Time `json:"archived_at,omitempty"`

	LastModified int64 `json:"last_modified"`

	// ServerUpdatedAt is set by the server on every write and echoed back
	// on reads. It is informational; merge ordering uses LastModified.
	ServerUpdatedAt time.Time `json:"server_updated_at,omitzero"`
}

// Store is the request/response half of the remote boundary.
type Store interface {
	// Snapshot fetches the full remote record set.
	Snapshot(ctx context.Context) ([]Document, error)

	// Put overwrites the full remote document for doc.ID and returns the
	// server-assigned ref for the record.
	Put(ctx context.Context, doc Document) (ref string, err error)
}

// Feed is the push half of the remote boundary: a long-lived subscription
// delivering changed documents as they are written remotely.
type Feed interface {
	// Subscribe starts the notification stream. The owner must call
	// Unsubscribe on the returned subscription exactly once on shutdown;
	// failing to do so leaks the underlying network listener.
	Subscribe(ctx context.Context) (*Subscription, error)
}

// Subscription is a live change-notification stream.
type Subscription struct {
	events      chan Document
	unsubscribe func()
}

// NewSubscription wires a subscription around a delivery channel and a
// cancel function. Intended for Feed implementations.
func NewSubscription(events chan Document, unsubscribe func()) *Subscription {
	return &Subscription{events: events, unsubscribe: unsubscribe}
}

// Events returns the delivery channel. The channel is closed after
// Unsubscribe or when the feed's context ends.
func (s *Subscription) Events() <-chan Document {
	return s.events
}

// Unsubscribe releases the stream. Safe to call exactly once; Feed
// implementations guard repeated calls internally where the underlying
// resource requires it.
func (s *Subscription) Unsubscribe() {
	s.unsubscribe()
}

// FromReport converts a local record to its wire document.
// SyncStatus and RemoteRef stay local.
func FromReport(r model.HazardReport) Document {
	return Document{
		ID:               r.ID,
		Lat:              r.Lat,
		Lng:              r.Lng,
		Description:      r.Description,
		PhotoRef:         r.PhotoRef,
		CreatedAt:        r.CreatedAt,
		ClearedLedger:    r.ClearedLedger,
		StillThereLedger: r.StillThereLedger,
		Resolved:         r.Resolved,
		Flagged:          r.Flagged,
		NoGlassFound:     r.NoGlassFound,
		Archived:         r.Archived,
		ArchivedAt:       r.ArchivedAt,
		LastModified:     r.LastModified,
	}
}

// ToReport converts a wire document to a local record. The caller decides
// SyncStatus; remote-origin applies set it to synced.
func (d Document) ToReport() model.HazardReport {
	return model.HazardReport{
		ID:               d.ID,
		Lat:              d.Lat,
		Lng:              d.Lng,
		Description:      d.Description,
		PhotoRef:         d.PhotoRef,
		CreatedAt:        d.CreatedAt,
		ClearedLedger:    d.ClearedLedger,
		StillThereLedger: d.StillThereLedger,
		Resolved:         d.Resolved,
		Flagged:          d.Flagged,
		NoGlassFound:     d.NoGlassFound,
		Archived:         d.Archived,
		ArchivedAt:       d.ArchivedAt,
		LastModified:     d.LastModified,
	}
}
