package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the hazard core.
type Metrics struct {
	// Sync engine.
	RecordsPushed  prometheus.Counter
	PushFailures   prometheus.Counter
	Pulls          prometheus.Counter
	PullFailures   prometheus.Counter
	MergeDecisions *prometheus.CounterVec // labels: winner={remote,local,stale}
	FeedApplied    prometheus.Counter
	FeedDropped    prometheus.Counter
	Online         prometheus.Gauge

	// Proximity detector.
	AlertsFired  prometheus.Counter
	FixesDropped prometheus.Counter
}

// NewMetrics creates and registers all core metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsPushed,
		m.PushFailures,
		m.Pulls,
		m.PullFailures,
		m.MergeDecisions,
		m.FeedApplied,
		m.FeedDropped,
		m.Online,
		m.AlertsFired,
		m.FixesDropped,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsPushed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glasswatch",
			Name:      "records_pushed_total",
			Help:      "Pending records successfully pushed to the remote store.",
		}),
		PushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glasswatch",
			Name:      "push_failures_total",
			Help:      "Per-record push failures (record stays pending).",
		}),
		Pulls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glasswatch",
			Name:      "pulls_total",
			Help:      "Completed snapshot pull/merge runs.",
		}),
		PullFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glasswatch",
			Name:      "pull_failures_total",
			Help:      "Snapshot fetches that failed (remote unavailable).",
		}),
		MergeDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glasswatch",
			Name:      "merge_decisions_total",
			Help:      "Merge outcomes for ids present on both sides.",
		}, []string{"winner"}),
		FeedApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glasswatch",
			Name:      "feed_applied_total",
			Help:      "Remote change notifications applied while online.",
		}),
		FeedDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glasswatch",
			Name:      "feed_dropped_total",
			Help:      "Remote change notifications dropped while offline.",
		}),
		Online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "glasswatch",
			Name:      "online",
			Help:      "1 when connectivity is reported online, 0 otherwise.",
		}),
		AlertsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glasswatch",
			Name:      "proximity_alerts_total",
			Help:      "Idle-to-Alerting transitions of the proximity detector.",
		}),
		FixesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "glasswatch",
			Name:      "location_fixes_dropped_total",
			Help:      "Location fixes discarded by the 1s rate limit.",
		}),
	}
}
