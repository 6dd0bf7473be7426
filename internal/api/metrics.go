package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeTooLarge = "too_large"
	outcomeError    = "error"
)

// metrics holds the solver metrics exposed on /metrics. Each Handler owns its
// own registry so routers can be built repeatedly in one process.
type metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	solves          *prometheus.CounterVec
	solveDuration   prometheus.Histogram
	tableCells      prometheus.Gauge
	inventoryItems  prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "knapsack",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "knapsack",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "knapsack",
			Name:      "solves_total",
			Help:      "Number of solve requests by outcome.",
		}, []string{"outcome"}),
		solveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "knapsack",
			Name:      "solve_duration_seconds",
			Help:      "Time spent deriving the step and tabulating the optimum.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		tableCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "knapsack",
			Name:      "table_cells",
			Help:      "Number of table cells computed by the most recent successful solve.",
		}),
		inventoryItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "knapsack",
			Name:      "inventory_items",
			Help:      "Number of items in the stored inventory.",
		}),
	}
	m.registry.MustRegister(m.requests, m.requestDuration, m.solves, m.solveDuration, m.tableCells, m.inventoryItems)
	return m
}

func (m *metrics) observeSolve(outcome string, elapsed time.Duration, cells int) {
	m.solves.WithLabelValues(outcome).Inc()
	if outcome != outcomeOK {
		return
	}
	m.solveDuration.Observe(elapsed.Seconds())
	m.tableCells.Set(float64(cells))
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument counts and times requests served by next under the route label.
func (m *metrics) instrument(route string, next http.Handler) http.Handler {
	labels := prometheus.Labels{"route": route}
	counted := promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), next)
	return promhttp.InstrumentHandlerDuration(m.requestDuration.MustCurryWith(labels), counted)
}
