package telemetry

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// SyncMetrics exposes reconciliation counters to Prometheus.
type SyncMetrics struct {
	cycles    *prometheus.CounterVec
	duration  prometheus.Histogram
	conflicts prometheus.Counter
	added     prometheus.Counter
	updated   prometheus.Counter
	quotes    prometheus.Gauge
}

// NewSyncMetrics creates the collectors and registers them with reg.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	m := &SyncMetrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quotesync",
			Subsystem: "sync",
			Name:      "cycles_total",
			Help:      "Reconciliation cycles by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quotesync",
			Subsystem: "sync",
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of completed reconciliation cycles.",
			Buckets:   prometheus.DefBuckets,
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quotesync",
			Subsystem: "sync",
			Name:      "conflicts_total",
			Help:      "Local categories overwritten by the remote.",
		}),
		added: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quotesync",
			Subsystem: "sync",
			Name:      "added_total",
			Help:      "Quotes appended from the remote.",
		}),
		updated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quotesync",
			Subsystem: "sync",
			Name:      "updated_total",
			Help:      "Quotes whose category was replaced by the remote.",
		}),
		quotes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quotesync",
			Subsystem: "store",
			Name:      "quotes",
			Help:      "Quotes currently held by the store.",
		}),
	}

	reg.MustRegister(m.cycles, m.duration, m.conflicts, m.added, m.updated, m.quotes)

	return m
}

// CycleFinished records the outcome of one reconciliation cycle.
func (m *SyncMetrics) CycleFinished(_ context.Context, r domain.SyncResult) {
	m.cycles.WithLabelValues(r.Outcome()).Inc()

	if r.Skipped {
		return
	}

	m.duration.Observe(r.Duration.Seconds())
	m.conflicts.Add(float64(len(r.Conflicts)))
	m.added.Add(float64(r.Added))
	m.updated.Add(float64(r.Updated))
}

// QuotesChanged keeps the store size gauge current.
func (m *SyncMetrics) QuotesChanged(_ context.Context, quotes []domain.Quote) {
	m.quotes.Set(float64(len(quotes)))
}
