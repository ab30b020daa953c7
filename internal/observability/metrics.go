package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chatbot"

// Upstream request outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeEmpty   = "empty"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the bot.
type Metrics struct {
	// Command metrics.
	CommandsTotal   *prometheus.CounterVec   // labels: command, outcome
	CommandDuration *prometheus.HistogramVec // labels: command

	// Upstream API metrics.
	UpstreamRequests    *prometheus.CounterVec   // labels: service, outcome={success,error,empty}
	UpstreamDuration    *prometheus.HistogramVec // labels: service
	QuoteSourceFailures *prometheus.CounterVec   // labels: source
	GeocodeCache        *prometheus.CounterVec   // labels: result={hit,miss}

	// Location store metrics.
	LocationWrites *prometheus.CounterVec // labels: outcome={success,error}
	SavedLocations prometheus.Gauge

	// Audit publishing metrics.
	AuditPublished prometheus.Counter
	AuditDropped   prometheus.Counter
	AuditRunning   prometheus.Gauge
}

// NewMetrics creates and registers all bot metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Command invocations by command and outcome.",
		}, []string{"command", "outcome"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time from invocation to formatted reply.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"command"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by service and outcome.",
		}, []string{"service", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"service"}),
		QuoteSourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_source_failures_total",
			Help:      "Quote sources skipped because they failed.",
		}, []string{"source"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		LocationWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_writes_total",
			Help:      "Location store persists by outcome.",
		}, []string{"outcome"}),
		SavedLocations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "saved_locations",
			Help:      "Number of users with a saved location.",
		}),
		AuditPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_published_total",
			Help:      "Command events written to the audit topic.",
		}),
		AuditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_dropped_total",
			Help:      "Command events dropped because the buffer was full.",
		}),
		AuditRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "audit_publisher_running",
			Help:      "1 when the audit publisher is active, 0 when shut down.",
		}),
	}

	prometheus.MustRegister(
		m.CommandsTotal,
		m.CommandDuration,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.QuoteSourceFailures,
		m.GeocodeCache,
		m.LocationWrites,
		m.SavedLocations,
		m.AuditPublished,
		m.AuditDropped,
		m.AuditRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		CommandsTotal:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "commands_total"}, []string{"command", "outcome"}),
		CommandDuration:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "command_duration_seconds"}, []string{"command"}),
		UpstreamRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "upstream_requests_total"}, []string{"service", "outcome"}),
		UpstreamDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "upstream_duration_seconds"}, []string{"service"}),
		QuoteSourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "quote_source_failures_total"}, []string{"source"}),
		GeocodeCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_cache_total"}, []string{"result"}),
		LocationWrites:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "location_writes_total"}, []string{"outcome"}),
		SavedLocations:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "saved_locations"}),
		AuditPublished:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "audit_events_published_total"}),
		AuditDropped:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "audit_events_dropped_total"}),
		AuditRunning:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "audit_publisher_running"}),
	}
}

// ObserveUpstream records one upstream call that started at start.
func (m *Metrics) ObserveUpstream(service, outcome string, start time.Time) {
	m.UpstreamRequests.WithLabelValues(service, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
}
