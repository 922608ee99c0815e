package core

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation latency, results and registry
// gauges as Prometheus collectors.
type PrometheusMetricsRecorder struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
	towns    prometheus.Gauge
	pending  *prometheus.GaugeVec
	merges   *prometheus.CounterVec
	sorts    *prometheus.CounterVec

	mu   sync.Mutex
	last map[string][2]int
}

// NewPrometheusMetricsRecorder registers the towncore collectors with reg.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	r := &PrometheusMetricsRecorder{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "towncore",
			Name:      "operation_duration_seconds",
			Help:      "Duration of registry operations in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"operation", "status"}),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "towncore",
			Name:      "operations_total",
			Help:      "Total registry operations by result",
		}, []string{"operation", "status"}),
		towns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "towncore",
			Name:      "towns",
			Help:      "Number of registered towns",
		}),
		pending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "towncore",
			Subsystem: "index",
			Name:      "pending",
			Help:      "Entries waiting in the unsorted suffix of an ordering",
		}, []string{"ordering"}),
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "towncore",
			Subsystem: "index",
			Name:      "merges_total",
			Help:      "Suffix merges performed by an ordering",
		}, []string{"ordering"}),
		sorts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "towncore",
			Subsystem: "index",
			Name:      "sorts_total",
			Help:      "Suffix sorts performed by an ordering",
		}, []string{"ordering"}),
		last: make(map[string][2]int, 2),
	}
	for _, c := range []prometheus.Collector{r.duration, r.total, r.towns, r.pending, r.merges, r.sorts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := outcome(success)
	r.duration.WithLabelValues(operation, status).Observe(duration.Seconds())
	r.total.WithLabelValues(operation, status).Inc()
}

// ObserveStats implements StatsObserver.
func (r *PrometheusMetricsRecorder) ObserveStats(stats Stats) {
	r.towns.Set(float64(stats.Towns))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ordering("name", stats.Index.ByName.Pending, stats.Index.ByName.Sorts, stats.Index.ByName.Merges)
	r.ordering("distance", stats.Index.ByDistance.Pending, stats.Index.ByDistance.Sorts, stats.Index.ByDistance.Merges)
}

// ordering converts the cumulative index counters into counter increments.
func (r *PrometheusMetricsRecorder) ordering(name string, pending, sorts, merges int) {
	r.pending.WithLabelValues(name).Set(float64(pending))
	prev := r.last[name]
	if d := sorts - prev[0]; d > 0 {
		r.sorts.WithLabelValues(name).Add(float64(d))
	}
	if d := merges - prev[1]; d > 0 {
		r.merges.WithLabelValues(name).Add(float64(d))
	}
	r.last[name] = [2]int{sorts, merges}
}
