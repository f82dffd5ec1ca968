package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "howdoihelp"

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	// Geolocation metrics.
	GeoLookups        *prometheus.CounterVec   // labels: provider, outcome={success,network,timeout,malformed,unresolved}
	GeoLookupDuration *prometheus.HistogramVec // labels: provider
	GeoResolutions    *prometheus.CounterVec   // labels: source={primary,secondary,fallback}

	// Policy database metrics.
	MMDBReloads *prometheus.CounterVec // labels: result={success,error}

	ReferralClicks       prometheus.Counter
	ReferralRecordErrors prometheus.Counter
	AdminDenied          prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.GeoLookups,
		m.GeoLookupDuration,
		m.GeoResolutions,
		m.MMDBReloads,
		m.ReferralClicks,
		m.ReferralRecordErrors,
		m.AdminDenied,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		GeoLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geo_lookups_total",
			Help:      "Geolocation provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeoLookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geo_lookup_duration_seconds",
			Help:      "Geolocation provider call duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		}, []string{"provider"}),
		GeoResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geo_resolutions_total",
			Help:      "Completed resolutions by the step that produced the result.",
		}, []string{"source"}),
		MMDBReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mmdb_reloads_total",
			Help:      "MMDB reload attempts by result.",
		}, []string{"result"}),
		ReferralClicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "referral_clicks_total",
			Help:      "Referral links followed.",
		}),
		ReferralRecordErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "referral_record_errors_total",
			Help:      "Referral clicks that could not be recorded.",
		}),
		AdminDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_denied_total",
			Help:      "Requests rejected by the admin cookie gate.",
		}),
	}
}

// ObserveLookup records a single provider attempt.
func (m *Metrics) ObserveLookup(provider, outcome string, elapsed time.Duration) {
	m.GeoLookups.WithLabelValues(provider, outcome).Inc()
	m.GeoLookupDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveResolution records which step of the chain produced a result.
func (m *Metrics) ObserveResolution(source string) {
	m.GeoResolutions.WithLabelValues(source).Inc()
}

// ObserveReload records an MMDB reload attempt.
func (m *Metrics) ObserveReload(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.MMDBReloads.WithLabelValues(result).Inc()
}
