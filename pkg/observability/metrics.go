package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for a single collection. Each
// Metrics owns an independent prometheus.Registry rather
// than registering against promauto's global default registry, so that
// constructing more than one (one per collection, or one per test) never
// panics on a duplicate registration.
type Metrics struct {
	Registry *prometheus.Registry

	VectorsInserted prometheus.Counter
	VectorsDeleted  prometheus.Counter
	VectorsUpdated  prometheus.Counter
	SearchesANN     prometheus.Counter
	SearchesExact   prometheus.Counter

	SearchLatency    prometheus.Histogram
	SearchResultSize prometheus.Histogram

	IndexSize     prometheus.Gauge
	IndexMaxLayer prometheus.Gauge
}

// NewMetrics builds a Metrics bound to its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		VectorsInserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "proximadb_vectors_inserted_total",
			Help: "Total number of vectors inserted.",
		}),
		VectorsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "proximadb_vectors_deleted_total",
			Help: "Total number of vectors deleted.",
		}),
		VectorsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "proximadb_vectors_updated_total",
			Help: "Total number of vectors updated.",
		}),
		SearchesANN: factory.NewCounter(prometheus.CounterOpts{
			Name: "proximadb_searches_ann_total",
			Help: "Total number of approximate (graph) searches performed.",
		}),
		SearchesExact: factory.NewCounter(prometheus.CounterOpts{
			Name: "proximadb_searches_exact_total",
			Help: "Total number of exact (true_search) searches performed.",
		}),
		SearchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "proximadb_search_latency_seconds",
			Help:    "Search latency in seconds.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		SearchResultSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "proximadb_search_result_size",
			Help:    "Number of results returned by a search.",
			Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500},
		}),
		IndexSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "proximadb_index_size",
			Help: "Number of vectors currently in the index.",
		}),
		IndexMaxLayer: factory.NewGauge(prometheus.GaugeOpts{
			Name: "proximadb_index_max_layer",
			Help: "Highest non-empty layer in the proximity graph.",
		}),
	}
}

// RecordInsert records a single vector insertion.
func (m *Metrics) RecordInsert() {
	if m == nil {
		return
	}
	m.VectorsInserted.Inc()
}

// RecordDelete records a single vector deletion.
func (m *Metrics) RecordDelete() {
	if m == nil {
		return
	}
	m.VectorsDeleted.Inc()
}

// RecordUpdate records a single vector update.
func (m *Metrics) RecordUpdate() {
	if m == nil {
		return
	}
	m.VectorsUpdated.Inc()
}

// RecordANNSearch records an approximate search's latency and result count.
func (m *Metrics) RecordANNSearch(duration time.Duration, resultSize int) {
	if m == nil {
		return
	}
	m.SearchesANN.Inc()
	m.SearchLatency.Observe(duration.Seconds())
	m.SearchResultSize.Observe(float64(resultSize))
}

// RecordExactSearch records a true_search's latency and result count.
func (m *Metrics) RecordExactSearch(duration time.Duration, resultSize int) {
	if m == nil {
		return
	}
	m.SearchesExact.Inc()
	m.SearchLatency.Observe(duration.Seconds())
	m.SearchResultSize.Observe(float64(resultSize))
}

// UpdateIndexStats refreshes the index-shape gauges.
func (m *Metrics) UpdateIndexStats(size, maxLayer int) {
	if m == nil {
		return
	}
	m.IndexSize.Set(float64(size))
	m.IndexMaxLayer.Set(float64(maxLayer))
}
