package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "downtimebot"

// Panel kinds used as label values.
const (
	KindStatus = "status"
	KindEvents = "events"
)

var (
	PanelsRefreshed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "panels_refreshed_total",
		Help:      "Panels re-rendered in place.",
	}, []string{"kind"})

	PanelsPruned = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "panels_pruned_total",
		Help:      "Panels removed because their channel or message was unreachable.",
	}, []string{"kind"})

	PanelsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "panels_skipped_total",
		Help:      "Panels left untouched because their platform is not connected.",
	}, []string{"kind"})

	SyncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sync_duration_seconds",
		Help:      "Duration of one synchronization pass.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	PersistenceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_failures_total",
		Help:      "State writes that failed; the process keeps serving from memory.",
	})

	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downtime_mutations_total",
		Help:      "Applied downtime changes by operation.",
	}, []string{"op"})
)
