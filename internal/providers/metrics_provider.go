package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rently/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncMetricWrites(metric string)
	IncRecalls()
	IncNotifications(notificationType string)
	SetActiveLockouts(count int)
	SetPendingEvents(count int)
}

type MetricsProvider struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	metricWrites       *prometheus.CounterVec
	recallsTotal       prometheus.Counter
	notificationsTotal *prometheus.CounterVec
	activeLockouts     prometheus.Gauge
	pendingEvents      prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncMetricWrites(metric string) {
	m.metricWrites.WithLabelValues(metric).Inc()
}

func (m *MetricsProvider) IncRecalls() {
	m.recallsTotal.Inc()
}

func (m *MetricsProvider) IncNotifications(notificationType string) {
	m.notificationsTotal.WithLabelValues(notificationType).Inc()
}

func (m *MetricsProvider) SetActiveLockouts(count int) {
	m.activeLockouts.Set(float64(count))
}

func (m *MetricsProvider) SetPendingEvents(count int) {
	m.pendingEvents.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rently_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rently_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rently_cache_hits_total",
			Help: "Total number of response cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rently_cache_misses_total",
			Help: "Total number of response cache misses",
		}),

		metricWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rently_analytics_writes_total",
			Help: "Total number of analytics counter deltas applied",
		}, []string{"metric"}),

		recallsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rently_recalls_total",
			Help: "Total number of automatic listing recalls",
		}),

		notificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rently_admin_notifications_total",
			Help: "Total number of admin notifications created",
		}, []string{"type"}),

		activeLockouts: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "rently_active_lockouts",
			Help: "Current number of locked-out accounts",
		}),

		pendingEvents: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "rently_pending_listing_events",
			Help: "Current number of queued listing change events",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncMetricWrites(_ string)                         {}
func (n *noopMetrics) IncRecalls()                                      {}
func (n *noopMetrics) IncNotifications(_ string)                        {}
func (n *noopMetrics) SetActiveLockouts(_ int)                          {}
func (n *noopMetrics) SetPendingEvents(_ int)                           {}
