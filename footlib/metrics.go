package footlib

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "footprint"

// Metrics is a set of prometheus collectors. All methods are safe to
// call on nil instance, it is a noop then.
type Metrics struct {
	visitorRequests      *prometheus.CounterVec
	geoCacheLookups      *prometheus.CounterVec
	geoProviderErrors    prometheus.Counter
	admissionErrors      prometheus.Counter
	notifications        *prometheus.CounterVec
	notificationDuration prometheus.Histogram
}

func (m *Metrics) VisitorRequest(method, result string) {
	if m == nil {
		return
	}

	m.visitorRequests.WithLabelValues(method, result).Inc()
}

func (m *Metrics) GeoCacheLookup(hit bool) {
	if m == nil {
		return
	}

	if hit {
		m.geoCacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.geoCacheLookups.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) GeoProviderError() {
	if m == nil {
		return
	}

	m.geoProviderErrors.Inc()
}

func (m *Metrics) AdmissionError() {
	if m == nil {
		return
	}

	m.admissionErrors.Inc()
}

func (m *Metrics) Notification(result string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.notifications.WithLabelValues(result).Inc()

	if elapsed > 0 {
		m.notificationDuration.Observe(elapsed.Seconds())
	}
}

// NewMetrics creates and registers collectors. If registerer is nil,
// collectors are created but not registered anywhere.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		visitorRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "visitor_requests_total",
			Help:      "A number of visitor requests by outcome.",
		}, []string{"method", "result"}),
		geoCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "geo_cache_lookups_total",
			Help:      "A number of geolocation cache lookups by result.",
		}, []string{"result"}),
		geoProviderErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "geo_provider_errors_total",
			Help:      "A number of failed geolocation provider lookups.",
		}),
		admissionErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "admission_errors_total",
			Help:      "A number of admission checks which have failed and were admitted.",
		}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notifications_total",
			Help:      "A number of notifications by delivery result.",
		}, []string{"result"}),
		notificationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "notification_duration_seconds",
			Help:      "Time spent on notification delivery.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
