package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
	UpstreamRetriesTotal    *prometheus.CounterVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	NormalizeDroppedTotal *prometheus.CounterVec

	RateLimitWaitSeconds prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dealscout_requests_total",
				Help: "Total number of search requests processed",
			},
			[]string{"status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dealscout_request_duration_seconds",
				Help:    "Search request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{},
		),
		RequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "dealscout_requests_in_flight",
				Help: "Number of search requests currently being processed",
			},
		),

		UpstreamRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dealscout_upstream_requests_total",
				Help: "Total number of upstream provider requests",
			},
			[]string{"provider", "status"},
		),
		UpstreamRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dealscout_upstream_request_duration_seconds",
				Help:    "Upstream provider request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15},
			},
			[]string{"provider"},
		),
		UpstreamRetriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dealscout_upstream_retries_total",
				Help: "Total number of retried upstream attempts",
			},
			[]string{"provider"},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dealscout_cache_hits_total",
				Help: "Total number of search cache hits",
			},
		),
		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "dealscout_cache_misses_total",
				Help: "Total number of search cache misses",
			},
		),

		NormalizeDroppedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dealscout_normalize_dropped_total",
				Help: "Total number of raw items dropped during normalization",
			},
			[]string{"provider"},
		),

		RateLimitWaitSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dealscout_rate_limit_wait_seconds",
				Help:    "Time spent waiting on the upstream call rate limiter",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5},
			},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordRequest(status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(status).Inc()
	m.RequestDuration.WithLabelValues().Observe(duration.Seconds())
}

func (m *Metrics) RecordUpstreamRequest(provider, status string, duration time.Duration) {
	m.UpstreamRequestsTotal.WithLabelValues(provider, status).Inc()
	m.UpstreamRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordUpstreamRetry(provider string) {
	m.UpstreamRetriesTotal.WithLabelValues(provider).Inc()
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordNormalizeDrop(provider string) {
	m.NormalizeDroppedTotal.WithLabelValues(provider).Inc()
}

func (m *Metrics) RecordRateLimitWait(duration time.Duration) {
	m.RateLimitWaitSeconds.Observe(duration.Seconds())
}

func (m *Metrics) IncRequestsInFlight() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	m.RequestsInFlight.Dec()
}
