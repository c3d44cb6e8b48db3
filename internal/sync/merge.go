package sync

import (
	"sort"

	"github.com/glasswatch/glasswatch/internal/model"
	"github.com/glasswatch/glasswatch/internal/remote"
)

// mergeWinner labels the outcome for one id present on both sides.
type mergeWinner string

const (
	winnerRemote mergeWinner = "remote"
	winnerLocal  mergeWinner = "local"
	winnerStale  mergeWinner = "stale"
)

// Merge reconciles a local record set against a remote snapshot and returns
// the merged set, sorted by id for deterministic persistence.
//
// Rules, keyed by id:
//   - id only local: keep the local record as-is (a local-only add stays
//     pending until pushed).
//   - id only remote: adopt the remote record, marked synced.
//   - id on both sides: remote wins iff remote.LastModified is strictly
//     greater (adopt remote, synced). Local wins iff local.LastModified is
//     greater or equal AND local is pending (keep local, still pending).
//     Otherwise the remote copy is a stale echo of a local write the remote
//     already acknowledged; keep local as-is.
//
// The equal-timestamp tie goes to local when pending - the >= comparison is
// deliberate and documented, not incidental.
//
// Merge is a pure function; the decisions callback (may be nil) receives
// the outcome per overlapping id so the engine can count them.
func Merge(local []model.HazardReport, snapshot []remote.Document, decisions func(mergeWinner)) []model.HazardReport {
	note := func(w mergeWinner) {
		if decisions != nil {
			decisions(w)
		}
	}

	localByID := make(map[string]model.HazardReport, len(local))
	for _, rec := range local {
		localByID[rec.ID] = rec
	}

	merged := make(map[string]model.HazardReport, len(local)+len(snapshot))
	for _, rec := range local {
		merged[rec.ID] = rec
	}

	for _, doc := range snapshot {
		loc, exists := localByID[doc.ID]
		if !exists {
			rec := doc.ToReport()
			rec.SyncStatus = model.StatusSynced
			if rec.RemoteRef == "" {
				rec.RemoteRef = "hazards/" + rec.ID
			}
			merged[rec.ID] = rec
			continue
		}

		switch {
		case doc.LastModified > loc.LastModified:
			rec := doc.ToReport()
			rec.SyncStatus = model.StatusSynced
			rec.RemoteRef = loc.RemoteRef
			if rec.RemoteRef == "" {
				rec.RemoteRef = "hazards/" + rec.ID
			}
			merged[rec.ID] = rec
			note(winnerRemote)
		case loc.SyncStatus == model.StatusPending:
			// Local is at least as new and unacknowledged: keep it
			// pending so the next push wins remotely too.
			note(winnerLocal)
		default:
			// Local newer but already synced: the snapshot is a stale
			// echo. Keep local as-is.
			note(winnerStale)
		}
	}

	out := make([]model.HazardReport, 0, len(merged))
	for _, rec := range merged {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
