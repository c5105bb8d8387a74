package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Query Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shelfquery",
			Name:      "queries_total",
			Help:      "Total number of collection queries",
		},
		[]string{"collection", "outcome"}, // outcome: "ok" / "invalid" / "error"
	)

	QueryResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shelfquery",
			Name:      "query_results",
			Help:      "Number of records matched by a query before pagination",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
		[]string{"collection"},
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shelfquery",
			Name:      "query_duration_seconds",
			Help:      "Query duration in seconds, snapshot included",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"collection"},
	)
)

var registerQueryOnce sync.Once

// RegisterQueryMetrics registers Prometheus query metrics. Safe to call more than once.
func RegisterQueryMetrics() {
	registerQueryOnce.Do(func() {
		prometheus.MustRegister(QueriesTotal)
		prometheus.MustRegister(QueryResults)
		prometheus.MustRegister(QueryDuration)
	})
}
