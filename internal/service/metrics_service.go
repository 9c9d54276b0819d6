package service

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/classroom-api/pkg/storage"
)

// MetricsSnapshot is a lightweight summary of the collected metrics.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	StoreOperations          uint64    `json:"store_operations"`
	StoreFailures            uint64    `json:"store_failures"`
	CloudPushes              uint64    `json:"cloud_pushes"`
	CloudFailures            uint64    `json:"cloud_failures"`
	FormulaFailures          uint64    `json:"formula_failures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	cloudPushes     *prometheus.CounterVec
	formulaFailures prometheus.Counter
	transfers       *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	storeCount           uint64
	storeFailureCount    uint64
	cloudPushCount       uint64
	cloudFailureCount    uint64
	formulaFailureCount  uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_operation_duration_seconds",
		Help:    "Latency of keyed store operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"op", "result"})

	cloudPushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cloud_push_total",
		Help: "Cloud mirror pushes by outcome",
	}, []string{"outcome"})

	formulaFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "formula_failures_total",
		Help: "Formula evaluations that failed and kept the previous value",
	})

	transfers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "class_transfers_total",
		Help: "Class transfers by action",
	}, []string{"action"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeDuration, cloudPushes, formulaFailures, transfers, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeDuration:   storeDuration,
		cloudPushes:     cloudPushes,
		formulaFailures: formulaFailures,
		transfers:       transfers,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveStoreOperation records one keyed store call.
func (m *MetricsService) ObserveStoreOperation(op string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
		atomic.AddUint64(&m.storeFailureCount, 1)
	}
	m.storeDuration.WithLabelValues(op, result).Observe(duration.Seconds())
	atomic.AddUint64(&m.storeCount, 1)
}

// RecordCloudPush counts a cloud push by outcome: written, unchanged or failed.
func (m *MetricsService) RecordCloudPush(outcome string) {
	if m == nil {
		return
	}
	m.cloudPushes.WithLabelValues(outcome).Inc()
	atomic.AddUint64(&m.cloudPushCount, 1)
	if outcome == CloudOutcomeFailed {
		atomic.AddUint64(&m.cloudFailureCount, 1)
	}
}

// RecordFormulaFailure counts a contained formula failure.
func (m *MetricsService) RecordFormulaFailure() {
	if m == nil {
		return
	}
	m.formulaFailures.Inc()
	atomic.AddUint64(&m.formulaFailureCount, 1)
}

// RecordTransfer counts a transfer action: offered, accepted or rejected.
func (m *MetricsService) RecordTransfer(action string) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(action).Inc()
}

// Snapshot returns aggregated metrics.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		StoreOperations:          atomic.LoadUint64(&m.storeCount),
		StoreFailures:            atomic.LoadUint64(&m.storeFailureCount),
		CloudPushes:              atomic.LoadUint64(&m.cloudPushCount),
		CloudFailures:            atomic.LoadUint64(&m.cloudFailureCount),
		FormulaFailures:          atomic.LoadUint64(&m.formulaFailureCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

// InstrumentStore wraps a KeyedStore so every call is timed. Change
// notifications of the wrapped store stay reachable.
func InstrumentStore(store storage.KeyedStore, metrics *MetricsService) storage.KeyedStore {
	if metrics == nil {
		return store
	}
	return &instrumentedStore{next: store, metrics: metrics}
}

type instrumentedStore struct {
	next    storage.KeyedStore
	metrics *MetricsService
}

func (s *instrumentedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	raw, ok, err := s.next.Get(ctx, key)
	s.metrics.ObserveStoreOperation("get", err, time.Since(start))
	return raw, ok, err
}

func (s *instrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.metrics.ObserveStoreOperation("set", err, time.Since(start))
	return err
}

func (s *instrumentedStore) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Remove(ctx, key)
	s.metrics.ObserveStoreOperation("remove", err, time.Since(start))
	return err
}

func (s *instrumentedStore) OnChange(fn func(key string)) {
	if n, ok := s.next.(storage.ChangeNotifier); ok {
		n.OnChange(fn)
	}
}
