package graphql

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for queries, batch rounds and
// the response cache. All methods are no-ops on a nil collector.
type MetricsCollector struct {
	queriesTotal    *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	queriesInFlight *prometheus.GaugeVec

	roundsTotal   *prometheus.CounterVec
	batchSize     *prometheus.HistogramVec
	roundDuration *prometheus.HistogramVec

	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheEvictions *prometheus.CounterVec
	cacheSize      *prometheus.GaugeVec

	errorsTotal *prometheus.CounterVec
	buildInfo   *prometheus.GaugeVec

	registry *prometheus.Registry
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	mc := &MetricsCollector{
		queriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphql_client_queries_total",
				Help: "Total number of settled GraphQL queries",
			},
			[]string{"client", "outcome"},
		),
		queryDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "graphql_client_query_duration_seconds",
				Help:    "Time from Query call to settlement in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"client"},
		),
		queriesInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "graphql_client_queries_in_flight",
				Help: "Number of queries issued but not yet settled",
			},
			[]string{"client"},
		),
		roundsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphql_client_transport_rounds_total",
				Help: "Total number of transport calls",
			},
			[]string{"client", "status_code"},
		),
		batchSize: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "graphql_client_batch_size",
				Help:    "Number of queries carried by one transport call",
				Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
			},
			[]string{"client"},
		),
		roundDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "graphql_client_transport_duration_seconds",
				Help:    "Duration of transport calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"client"},
		),
		cacheHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphql_client_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"client"},
		),
		cacheMisses: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphql_client_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"client"},
		),
		cacheEvictions: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphql_client_cache_evictions_total",
				Help: "Total number of cache evictions by reason",
			},
			[]string{"client", "reason"},
		),
		cacheSize: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "graphql_client_cache_size",
				Help: "Current number of entries in cache",
			},
			[]string{"client"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "graphql_client_errors_total",
				Help: "Total number of failed queries by error type",
			},
			[]string{"client", "type"},
		),
		buildInfo: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "graphql_client_build_info",
				Help: "Library build metadata, always 1",
			},
			[]string{"version", "commit", "build_date", "go_version"},
		),
	}
	mc.buildInfo.With(prometheus.Labels(GetVersionInfo())).Set(1)

	if reg, ok := registry.(*prometheus.Registry); ok {
		mc.registry = reg
	}

	return mc
}

// RecordQuery records a settled query and how long it took.
func (mc *MetricsCollector) RecordQuery(client string, err error, duration time.Duration) {
	if mc == nil {
		return
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
		mc.errorsTotal.WithLabelValues(client, errorType(err)).Inc()
	}
	mc.queriesTotal.WithLabelValues(client, outcome).Inc()
	mc.queryDuration.WithLabelValues(client).Observe(duration.Seconds())
}

// RecordInFlight sets the in-flight gauge.
func (mc *MetricsCollector) RecordInFlight(client string, size int) {
	if mc == nil {
		return
	}

	mc.queriesInFlight.WithLabelValues(client).Set(float64(size))
}

// RecordRound records one transport call. statusCode is 0 when the transport
// itself failed.
func (mc *MetricsCollector) RecordRound(client string, size, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	mc.roundsTotal.WithLabelValues(client, strconv.Itoa(statusCode)).Inc()
	mc.batchSize.WithLabelValues(client).Observe(float64(size))
	mc.roundDuration.WithLabelValues(client).Observe(duration.Seconds())
}

// RecordCacheHit increments cache hit counter.
func (mc *MetricsCollector) RecordCacheHit(client string) {
	if mc == nil {
		return
	}

	mc.cacheHits.WithLabelValues(client).Inc()
}

// RecordCacheMiss increments cache miss counter.
func (mc *MetricsCollector) RecordCacheMiss(client string) {
	if mc == nil {
		return
	}

	mc.cacheMisses.WithLabelValues(client).Inc()
}

// Cache eviction reasons.
const (
	EvictFailed   = "failed"
	EvictCapacity = "capacity"
)

// RecordCacheEviction counts an entry dropped from the cache, either because
// its query failed or to make room for a new key.
func (mc *MetricsCollector) RecordCacheEviction(client, reason string) {
	if mc == nil {
		return
	}

	mc.cacheEvictions.WithLabelValues(client, reason).Inc()
}

// RecordCacheSize sets cache size gauge.
func (mc *MetricsCollector) RecordCacheSize(client string, size int) {
	if mc == nil {
		return
	}

	mc.cacheSize.WithLabelValues(client).Set(float64(size))
}

// GetRegistry exposes the underlying prometheus registry, if it is one.
func (mc *MetricsCollector) GetRegistry() *prometheus.Registry {
	if mc == nil {
		return nil
	}
	return mc.registry
}
