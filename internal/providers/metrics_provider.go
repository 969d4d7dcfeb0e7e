package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"labdash/internal/models"
	"labdash/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncHubEvents(event string)
	IncRefreshes(trigger string)
	IncStaleDrops()
	ObserveBackendDuration(endpoint string, duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	hubEvents       *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	staleDrops      prometheus.Counter
	backendDuration *prometheus.HistogramVec
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

func (m *MetricsProvider) IncHubEvents(event string) {
	m.hubEvents.WithLabelValues(event).Inc()
}

func (m *MetricsProvider) IncRefreshes(trigger string) {
	m.refreshes.WithLabelValues(trigger).Inc()
}

func (m *MetricsProvider) IncStaleDrops() {
	m.staleDrops.Inc()
}

func (m *MetricsProvider) ObserveBackendDuration(endpoint string, duration time.Duration) {
	m.backendDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
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

func NewMetricsProvider(conf *structures.Config, store *models.ActivityStore) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "labdash_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "labdash_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "labdash_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "labdash_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		hubEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "labdash_hub_events_total",
			Help: "Realtime hub events received, by event name",
		}, []string{"event"}),

		refreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "labdash_refreshes_total",
			Help: "Activity list refreshes, by trigger",
		}, []string{"trigger"}),

		staleDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "labdash_stale_responses_dropped_total",
			Help: "Fetch responses discarded because a newer one already landed",
		}),

		backendDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "labdash_backend_request_duration_seconds",
			Help:    "Backend API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "labdash_activity_records",
		Help: "Current number of activity records in the store",
	}, func() float64 {
		return float64(store.Len())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncHubEvents(_ string)                            {}
func (n *noopMetrics) IncRefreshes(_ string)                            {}
func (n *noopMetrics) IncStaleDrops()                                   {}
func (n *noopMetrics) ObserveBackendDuration(_ string, _ time.Duration) {}
