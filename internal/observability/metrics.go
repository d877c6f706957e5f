package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the volunteer page.
type Metrics struct {
	// Backend fetches.
	BackendRequests *prometheus.CounterVec   // labels: endpoint={time,locations}, outcome={success,error}
	BackendDuration *prometheus.HistogramVec // labels: endpoint

	// Map rendering.
	MarkersRendered  prometheus.Histogram
	SettlesCancelled prometheus.Counter

	// Registration.
	RegistrationOutcomes *prometheus.CounterVec // labels: outcome={success,failure,unknown}
	DuplicateCallbacks   prometheus.Counter

	PagesActive prometheus.Gauge
}

// NewMetrics creates and registers all page metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()
	prometheus.MustRegister(
		m.BackendRequests,
		m.BackendDuration,
		m.MarkersRendered,
		m.SettlesCancelled,
		m.RegistrationOutcomes,
		m.DuplicateCallbacks,
		m.PagesActive,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "volunteer_page",
			Name:      "backend_requests_total",
			Help:      "Volunteer backend requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		BackendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "volunteer_page",
			Name:      "backend_request_duration_seconds",
			Help:      "Volunteer backend request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		MarkersRendered: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "volunteer_page",
			Name:      "markers_rendered",
			Help:      "Number of map markers per rendered page.",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
		}),
		SettlesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "volunteer_page",
			Name:      "map_settles_cancelled_total",
			Help:      "Pending map commits dropped because the map was unmounted first.",
		}),
		RegistrationOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "volunteer_page",
			Name:      "registration_outcomes_total",
			Help:      "Registration results received from the form, by classified outcome.",
		}, []string{"outcome"}),
		DuplicateCallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "volunteer_page",
			Name:      "registration_duplicate_callbacks_total",
			Help:      "Registration callbacks ignored because the outcome was already set.",
		}),
		PagesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "volunteer_page",
			Name:      "pages_active",
			Help:      "Page instances currently held in memory.",
		}),
	}
}
