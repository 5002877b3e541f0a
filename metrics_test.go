package graphql

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewMetricsCollectorWithRegistry(registry)

	if collector == nil {
		t.Fatal("NewMetricsCollectorWithRegistry() returned nil")
	}
	if collector.GetRegistry() != registry {
		t.Error("Registry not set correctly")
	}

	initialized := map[string]bool{
		"queriesTotal":    collector.queriesTotal != nil,
		"queryDuration":   collector.queryDuration != nil,
		"queriesInFlight": collector.queriesInFlight != nil,
		"roundsTotal":     collector.roundsTotal != nil,
		"batchSize":       collector.batchSize != nil,
		"roundDuration":   collector.roundDuration != nil,
		"cacheHits":       collector.cacheHits != nil,
		"cacheMisses":     collector.cacheMisses != nil,
		"cacheEvictions":  collector.cacheEvictions != nil,
		"cacheSize":       collector.cacheSize != nil,
		"errorsTotal":     collector.errorsTotal != nil,
		"buildInfo":       collector.buildInfo != nil,
	}
	for name, ok := range initialized {
		if !ok {
			t.Errorf("%s metric not initialized", name)
		}
	}
}

func TestRecordQuery(t *testing.T) {
	collector := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())

	collector.RecordQuery("batched", nil, 10*time.Millisecond)
	collector.RecordQuery("batched", &RequestError{StatusCode: http.StatusBadGateway}, time.Millisecond)
	collector.RecordQuery("batched", &QueryError{}, time.Millisecond)

	if got := testutil.ToFloat64(collector.queriesTotal.WithLabelValues("batched", "success")); got != 1 {
		t.Errorf("Expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(collector.queriesTotal.WithLabelValues("batched", "error")); got != 2 {
		t.Errorf("Expected 2 errors, got %v", got)
	}
	if got := testutil.ToFloat64(collector.errorsTotal.WithLabelValues("batched", "request")); got != 1 {
		t.Errorf("Expected 1 request error, got %v", got)
	}
	if got := testutil.ToFloat64(collector.errorsTotal.WithLabelValues("batched", "query")); got != 1 {
		t.Errorf("Expected 1 query error, got %v", got)
	}
}

func TestRecordRound(t *testing.T) {
	collector := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())

	collector.RecordRound("batched", 3, http.StatusOK, 5*time.Millisecond)
	collector.RecordRound("batched", 1, 0, time.Millisecond)

	if got := testutil.ToFloat64(collector.roundsTotal.WithLabelValues("batched", "200")); got != 1 {
		t.Errorf("Expected 1 round with status 200, got %v", got)
	}
	if got := testutil.ToFloat64(collector.roundsTotal.WithLabelValues("batched", "0")); got != 1 {
		t.Errorf("Expected 1 failed round, got %v", got)
	}
	if n := testutil.CollectAndCount(collector.batchSize); n != 1 {
		t.Errorf("Expected one batch size series, got %d", n)
	}
}

func TestRecordCache(t *testing.T) {
	collector := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())

	collector.RecordCacheHit("cached")
	collector.RecordCacheHit("cached")
	collector.RecordCacheMiss("cached")
	collector.RecordCacheEviction("cached", EvictFailed)
	collector.RecordCacheEviction("cached", EvictCapacity)
	collector.RecordCacheEviction("cached", EvictCapacity)
	collector.RecordCacheSize("cached", 7)

	if got := testutil.ToFloat64(collector.cacheHits.WithLabelValues("cached")); got != 2 {
		t.Errorf("Expected 2 hits, got %v", got)
	}
	if got := testutil.ToFloat64(collector.cacheMisses.WithLabelValues("cached")); got != 1 {
		t.Errorf("Expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(collector.cacheEvictions.WithLabelValues("cached", EvictFailed)); got != 1 {
		t.Errorf("Expected 1 failed eviction, got %v", got)
	}
	if got := testutil.ToFloat64(collector.cacheEvictions.WithLabelValues("cached", EvictCapacity)); got != 2 {
		t.Errorf("Expected 2 capacity evictions, got %v", got)
	}
	if got := testutil.ToFloat64(collector.cacheSize.WithLabelValues("cached")); got != 7 {
		t.Errorf("Expected cache size 7, got %v", got)
	}
}

func TestBuildInfo(t *testing.T) {
	collector := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())

	gauge := collector.buildInfo.WithLabelValues(Version, GitCommit, BuildDate, GoVersion)
	if got := testutil.ToFloat64(gauge); got != 1 {
		t.Errorf("Expected build info gauge 1, got %v", got)
	}
	if n := testutil.CollectAndCount(collector.buildInfo); n != 1 {
		t.Errorf("Expected one build info series, got %d", n)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var collector *MetricsCollector

	collector.RecordQuery("x", errors.New("boom"), time.Second)
	collector.RecordInFlight("x", 1)
	collector.RecordRound("x", 1, 200, time.Second)
	collector.RecordCacheHit("x")
	collector.RecordCacheMiss("x")
	collector.RecordCacheEviction("x", EvictFailed)
	collector.RecordCacheSize("x", 1)

	if collector.GetRegistry() != nil {
		t.Error("Expected nil registry")
	}
}

func TestClientMetricsIntegration(t *testing.T) {
	rec := newRecorder(t, echoBatch)
	collector := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())
	client := NewBatchClient(rec.URL(), WithName("api"), WithMetricsCollector(collector))

	a, b := client.Query("a", nil), client.Query("b", nil)
	await(t, a)
	await(t, b)

	if got := testutil.ToFloat64(collector.queriesTotal.WithLabelValues("api", "success")); got != 2 {
		t.Errorf("Expected 2 successful queries, got %v", got)
	}
	if got := testutil.ToFloat64(collector.roundsTotal.WithLabelValues("api", "200")); got != 1 {
		t.Errorf("Expected 1 round, got %v", got)
	}
	if got := testutil.ToFloat64(collector.queriesInFlight.WithLabelValues("api")); got != 0 {
		t.Errorf("Expected nothing in flight, got %v", got)
	}
}
