package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
)

// Guard scopes reported on rejected actions.
const (
	GuardScopeWorkflow = "workflow"
	GuardScopeReport   = "report"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
// A nil *MetricsService is valid and records nothing.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	apiDuration     *prometheus.HistogramVec
	failures        *prometheus.CounterVec
	guardRejections *prometheus.CounterVec
	consoleDuration *prometheus.HistogramVec
	cacheHitRatio   prometheus.Gauge
	cacheLatency    prometheus.Observer

	apiRequestCount      uint64
	apiDurationTotal     uint64
	guardRejectCount     uint64
	consoleRequestCount  uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
	failureCountsMu      sync.Mutex
	failureCountsPerKind map[string]uint64
}

// NewMetricsService registers the client collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_client_request_duration_seconds",
		Help:    "Duration of outbound requests to the organisation API",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_client_failures_total",
		Help: "Classified failures returned to the console",
	}, []string{"kind", "local"})

	guardRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_guard_rejections_total",
		Help: "Actions rejected because another action held the in-flight guard",
	}, []string{"scope"})

	consoleDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_request_duration_seconds",
		Help:    "Duration of admin console HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "member_cache_hit_ratio",
		Help: "Ratio of member cache hits to total lookups",
	})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "member_cache_latency_seconds",
		Help:    "Latency for member cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(apiDuration, failures, guardRejections, consoleDuration, cacheHitRatio, cacheLatency, goroutines)

	return &MetricsService{
		registry:             registry,
		handler:              promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		apiDuration:          apiDuration,
		failures:             failures,
		guardRejections:      guardRejections,
		consoleDuration:      consoleDuration,
		cacheHitRatio:        cacheHitRatio,
		cacheLatency:         cacheLatency,
		failureCountsPerKind: make(map[string]uint64),
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveAPIRequest records an outbound call. Status 0 means no response arrived.
func (m *MetricsService) ObserveAPIRequest(operation string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.apiDuration.WithLabelValues(operation, strconv.Itoa(status)).Observe(duration.Seconds())
	atomic.AddUint64(&m.apiRequestCount, 1)
	atomic.AddUint64(&m.apiDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordFailure counts a classified failure.
func (m *MetricsService) RecordFailure(err *appErrors.Error) {
	if m == nil || err == nil {
		return
	}
	m.failures.WithLabelValues(string(err.Kind), strconv.FormatBool(err.Local)).Inc()
	m.failureCountsMu.Lock()
	m.failureCountsPerKind[string(err.Kind)]++
	m.failureCountsMu.Unlock()
}

// RecordGuardRejection counts an action refused by a single-flight guard.
func (m *MetricsService) RecordGuardRejection(scope string) {
	if m == nil {
		return
	}
	m.guardRejections.WithLabelValues(scope).Inc()
	atomic.AddUint64(&m.guardRejectCount, 1)
}

// ObserveConsoleRequest records a console HTTP request.
func (m *MetricsService) ObserveConsoleRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.consoleDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
	atomic.AddUint64(&m.consoleRequestCount, 1)
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	if ratio, ok := m.hitRatio(); ok {
		m.cacheHitRatio.Set(ratio)
	}
}

func (m *MetricsService) hitRatio() (float64, bool) {
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total == 0 {
		return 0, false
	}
	return float64(hits) / float64(total), true
}

// Snapshot returns aggregated metrics for the console summary endpoint.
func (m *MetricsService) Snapshot() models.ClientMetricsSnapshot {
	if m == nil {
		return models.ClientMetricsSnapshot{FailuresByKind: map[string]uint64{}}
	}
	requests := atomic.LoadUint64(&m.apiRequestCount)
	var avgMs float64
	if requests > 0 {
		avgMs = float64(atomic.LoadUint64(&m.apiDurationTotal)) / float64(requests) / float64(time.Millisecond)
	}
	ratio, _ := m.hitRatio()

	m.failureCountsMu.Lock()
	byKind := make(map[string]uint64, len(m.failureCountsPerKind))
	for k, v := range m.failureCountsPerKind {
		byKind[k] = v
	}
	m.failureCountsMu.Unlock()

	return models.ClientMetricsSnapshot{
		APIRequestsTotal:     requests,
		AverageAPIRequestMs:  avgMs,
		FailuresByKind:       byKind,
		GuardRejections:      atomic.LoadUint64(&m.guardRejectCount),
		CacheHitRatio:        ratio,
		ConsoleRequestsTotal: atomic.LoadUint64(&m.consoleRequestCount),
		Goroutines:           runtime.NumGoroutine(),
		GeneratedAt:          time.Now().UTC(),
	}
}
