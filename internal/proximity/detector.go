package proximity

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/glasswatch/glasswatch/internal/model"
	"github.com/glasswatch/glasswatch/internal/observability"
)

const (
	// EntryRadius is the distance at which a report enters range.
	EntryRadius = 3.0 // meters

	// ExitRadius is the distance an already in-range report may drift to
	// before it leaves range. The gap between the radii is the hysteresis.
	ExitRadius = 6.0 // meters

	// MinFixInterval rate-limits processing: at most one fix per second.
	// Excess fixes are dropped, not queued.
	MinFixInterval = 1000 * time.Millisecond

	// FixWait bounds how long Run waits for the next fix before degrading
	// to "no fresh fix".
	FixWait = 5 * time.Second
)

// State is the alert state machine position.
type State string

const (
	// Idle means no alert is latched.
	Idle State = "idle"

	// Alerting means an alert fired and no new one fires until the
	// in-range set empties.
	Alerting State = "alerting"
)

// ReportSource supplies the current report list, read-only.
// *store.Store satisfies it.
type ReportSource interface {
	GetAll(ctx context.Context) ([]model.HazardReport, error)
}

// Haptic is the local vibration sink. Pulse is fire-and-forget.
type Haptic interface {
	Pulse()
}

// Notifier is the local notification sink. Notify is fire-and-forget.
type Notifier interface {
	Notify(reportIDs []string)
}

// Detector consumes a location stream and produces debounced,
// hysteresis-stable proximity alerts.
//
// Thread-safety: ProcessFix, Disable, State and InRange are safe from any
// goroutine; Run is the usual single caller.
type Detector struct {
	reports  ReportSource
	suppress *SuppressionList
	haptic   Haptic
	notifier Notifier
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu        sync.Mutex
	state     State
	inRange   map[string]bool
	lastFixAt time.Time
}

// New creates a detector. suppress may be shared with the submit path so a
// device's own fresh report does not alert it.
func New(
	reports ReportSource,
	suppress *SuppressionList,
	haptic Haptic,
	notifier Notifier,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Detector {
	return &Detector{
		reports:  reports,
		suppress: suppress,
		haptic:   haptic,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
		state:    Idle,
		inRange:  make(map[string]bool),
	}
}

// State returns the current state machine position.
func (d *Detector) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// InRange returns the ids currently in range, sorted.
func (d *Detector) InRange() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]string, 0, len(d.inRange))
	for id := range d.inRange {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Disable resets all internal state - the in-range set, the alert latch and
// the rate limiter - back to initial values.
func (d *Detector) Disable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = Idle
	d.inRange = make(map[string]bool)
	d.lastFixAt = time.Time{}
}

// Run consumes the location watch until the context ends, releasing the
// watch on the way out. Waits at most FixWait per fix; a quiet stretch just
// means no fresh fix, not an error.
func (d *Detector) Run(ctx context.Context, source FixSource) error {
	watch, err := source.Watch(ctx)
	if err != nil {
		return err
	}
	defer watch.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fix, ok := <-watch.Fixes():
			if !ok {
				return nil
			}
			if err := d.ProcessFix(ctx, fix); err != nil {
				d.logger.Warn("fix processing failed", "error", err)
			}
		case <-d.clock.After(FixWait):
			d.logger.Debug("no fresh fix")
		}
	}
}

// ProcessFix runs one fix through the rate limiter, the range computation
// and the alert state machine.
func (d *Detector) ProcessFix(ctx context.Context, fix Fix) error {
	if fix.Err != nil {
		d.logger.Debug("location fix error", "error", fix.Err)
		return nil
	}

	now := d.clock.Now()

	d.mu.Lock()
	if !d.lastFixAt.IsZero() && now.Sub(d.lastFixAt) < MinFixInterval {
		d.mu.Unlock()
		d.metrics.FixesDropped.Inc()
		return nil
	}
	d.lastFixAt = now
	d.mu.Unlock()

	reports, err := d.reports.GetAll(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	next := make(map[string]bool)
	var entered []string
	for _, rec := range reports {
		if !rec.Active() || d.suppress.Suppressed(rec.ID) {
			continue
		}

		dist := Distance(fix.Lat, fix.Lng, rec.Lat, rec.Lng)
		wasIn := d.inRange[rec.ID]
		in := dist <= EntryRadius || (wasIn && dist <= ExitRadius)
		if !in {
			continue
		}

		next[rec.ID] = true
		if !wasIn {
			entered = append(entered, rec.ID)
		}
	}

	hadAny := len(d.inRange) > 0
	d.inRange = next

	switch {
	case d.state == Idle && len(entered) > 0:
		d.state = Alerting
		sort.Strings(entered)
		d.fireAlert(entered)
	case d.state == Alerting && hadAny && len(next) == 0:
		d.state = Idle
		d.logger.Debug("left hazard range, latch cleared")
	}

	return nil
}

// fireAlert triggers both sinks. Fire-and-forget: the sinks own any
// platform-side gating or failure handling.
func (d *Detector) fireAlert(reportIDs []string) {
	d.metrics.AlertsFired.Inc()
	d.logger.Info("proximity alert", "report_ids", reportIDs)
	d.haptic.Pulse()
	d.notifier.Notify(reportIDs)
}
