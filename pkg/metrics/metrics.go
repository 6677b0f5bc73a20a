package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Store metrics
	StoreOperations *prometheus.CounterVec
	StoreLatency    *prometheus.HistogramVec

	// Cascade metrics
	CascadeOperations *prometheus.CounterVec
	CascadeDeleted    *prometheus.CounterVec

	// List cache metrics
	CacheLookups       *prometheus.CounterVec
	CacheInvalidations prometheus.Counter

	// Change event metrics
	EventsPublished *prometheus.CounterVec
	EventsReceived  prometheus.Counter

	// Rota metrics
	WeeksResolved prometheus.Counter
}

// NewMetrics creates and registers all application metrics on reg.
// Passing nil registers on the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of document store operations",
		}, []string{"operation", "collection", "status"}),
		StoreLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of document store operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		CascadeOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_operations_total",
			Help:      "Total number of cascade deletes by outcome",
		}, []string{"cascade", "outcome"}),
		CascadeDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_deleted_records_total",
			Help:      "Records removed by cascade deletes",
		}, []string{"collection"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_cache_lookups_total",
			Help:      "List cache lookups by result",
		}, []string{"collection", "result"}),
		CacheInvalidations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_cache_invalidations_total",
			Help:      "Number of list cache entries evicted",
		}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_events_published_total",
			Help:      "Change events published to the broker",
		}, []string{"status"}),
		EventsReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_events_received_total",
			Help:      "Change events received from the broker",
		}),

		WeeksResolved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rota_weeks_resolved_total",
			Help:      "Number of rota weeks resolved",
		}),
	}
}

// NewNop returns metrics registered on a throwaway registry.
func NewNop() *Metrics {
	return NewMetrics("test", prometheus.NewRegistry())
}
