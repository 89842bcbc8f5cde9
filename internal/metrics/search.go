package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/recordex/internal/domain/event"
)

// Search and event Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recordex",
			Name:      "search_requests_total",
			Help:      "Total number of executed searches per targeted document type",
		},
		[]string{"type"},
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "recordex",
			Name:      "search_duration_seconds",
			Help:      "Search execution time in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "recordex",
			Name:      "search_results",
			Help:      "Number of matching documents per search",
			Buckets:   []float64{0, 1, 3, 10, 30, 100, 300, 1000},
		},
	)

	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recordex",
			Name:      "events_total",
			Help:      "Total number of emitted engine events",
		},
		[]string{"event"},
	)

	EventsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recordex",
			Name:      "events_dropped_total",
			Help:      "Events dropped by a full sink buffer",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search and event metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(EventsTotal)
	prometheus.MustRegister(EventsDroppedTotal)
	searchMetricsRegistered = true
}

// EventHandler counts every event and records search observations from
// search.executed.
func EventHandler() event.Handler {
	return func(_ context.Context, e event.Event) {
		EventsTotal.WithLabelValues(string(e.Name)).Inc()
		if e.Name != event.SearchExecuted {
			return
		}
		if types, ok := e.Attrs[event.AttrTypes].([]string); ok {
			for _, t := range types {
				SearchRequestsTotal.WithLabelValues(t).Inc()
			}
		}
		if ms, ok := e.Attrs[event.AttrTookMS].(int64); ok {
			SearchDuration.Observe(float64(ms) / 1000)
		}
		if n, ok := e.Attrs[event.AttrResults].(int); ok {
			SearchResults.Observe(float64(n))
		}
	}
}

// DropCounter returns a callback that counts dropped events.
func DropCounter() func() {
	return EventsDroppedTotal.Inc
}
