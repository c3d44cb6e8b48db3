package votes

import (
	"context"
	"errors"

	"github.com/glasswatch/glasswatch/internal/model"
)

// errNoChange aborts a store.Update from inside the mutator when a cast is
// a duplicate, leaving the row untouched.
var errNoChange = errors.New("no change")

func isNoChange(err error) bool {
	return errors.Is(err, errNoChange)
}

// AutoArchiveSweep archives every resolved, unarchived report whose last
// modification is older than ArchiveAfter.
//
// The sweep is idempotent: archiving moves the report out of the candidate
// set, so an immediate second run finds nothing and changes nothing.
// Archival is a local mutation like any other - it marks the record pending
// so the archive state syncs to other devices.
//
// Returns the ids that were archived on this run.
func (e *Engine) AutoArchiveSweep(ctx context.Context) ([]string, error) {
	all, err := e.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now().UTC()
	cutoff := now.Add(-ArchiveAfter).UnixMilli()

	var archived []string
	for _, rec := range all {
		if !rec.Resolved || rec.Archived || rec.LastModified >= cutoff {
			continue
		}

		id := rec.ID
		_, err := e.store.Update(ctx, id, func(r *model.HazardReport) error {
			if !r.Resolved || r.Archived {
				return errNoChange
			}
			at := now
			r.Archived = true
			r.ArchivedAt = &at
			return nil
		})
		if err != nil {
			if isNoChange(err) {
				continue
			}
			return archived, err
		}
		archived = append(archived, id)
	}

	if len(archived) > 0 {
		e.logger.Info("auto-archive sweep", "archived", len(archived))
	}
	return archived, nil
}
