package graphql

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultDebounce is the batching window used when WithDebounce is not given.
	DefaultDebounce = 5 * time.Millisecond
	// DefaultCacheSize is the CachedClient capacity used when WithCacheSize is not given.
	DefaultCacheSize = 10
)

type config struct {
	name           string
	endpoint       string
	transport      Transport
	httpClient     *http.Client
	header         http.Header
	debounce       time.Duration
	maxBatchSize   int
	cacheSize      int
	ctx            context.Context
	errorHandler   ErrorHandler
	metrics        *MetricsCollector
	debug          *DebugConfig
	logger         Logger
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
}

func newConfig(name, endpoint string, options []Option) *config {
	cfg := &config{
		name:      name,
		endpoint:  endpoint,
		header:    make(http.Header),
		debounce:  DefaultDebounce,
		cacheSize: DefaultCacheSize,
		ctx:       context.Background(),
		debug:     DefaultDebugConfig(),
	}

	for _, option := range options {
		if option != nil {
			option(cfg)
		}
	}

	if cfg.transport == nil {
		cfg.transport = NewHTTPTransport(cfg.httpClient)
	}
	cfg.tracer = newTracer(cfg.tracerProvider)

	return cfg
}

// WithName sets the client label used in metrics and logs.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithTransport sets the transport used for every round trip.
func WithTransport(t Transport) Option {
	return func(c *config) {
		c.transport = t
	}
}

// WithHTTPClient sends requests through a custom net/http client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
		c.transport = NewHTTPTransport(client)
	}
}

// WithRestyClient sends requests through a resty client.
func WithRestyClient(client *resty.Client) Option {
	return func(c *config) {
		c.transport = NewRestyTransport(client)
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *config) {
		c.header.Add(key, value)
	}
}

// WithDebounce sets how long a batch collects queries before it is sent.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		c.debounce = d
	}
}

// WithMaxBatchSize sends a batch as soon as it holds n queries. Zero means
// no limit.
func WithMaxBatchSize(n int) Option {
	return func(c *config) {
		c.maxBatchSize = n
	}
}

// WithCacheSize sets the number of entries a CachedClient keeps.
func WithCacheSize(n int) Option {
	return func(c *config) {
		c.cacheSize = n
	}
}

// WithContext sets the base context for transport calls.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		c.ctx = ctx
	}
}

// WithErrorHandler registers a hook for errors carried by otherwise
// successful responses.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(c *config) {
		c.errorHandler = fn
	}
}

// WithMetrics enables Prometheus metrics collection
func WithMetrics() Option {
	return func(c *config) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *config) {
		c.metrics = collector
	}
}

// WithDebug enables debug logging with default configuration
func WithDebug() Option {
	return func(c *config) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration
func WithDebugConfig(cfg *DebugConfig) Option {
	return func(c *config) {
		c.debug = cfg
	}
}

// WithLogger sets a custom logger for debug output
func WithLogger(logger Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithSimpleLogger enables debug logging to stderr.
func WithSimpleLogger() Option {
	return func(c *config) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *config) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// WithTracerProvider records a span per transport call.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		c.tracerProvider = tp
	}
}

func (c *config) validate(needsEndpoint, needsCache bool) error {
	var problems []string

	if needsEndpoint {
		problems = append(problems, c.validateTransportConfig()...)
		problems = append(problems, c.validateBatchConfig()...)
	}
	if needsCache {
		problems = append(problems, c.validateCacheConfig()...)
	}
	problems = append(problems, c.validateDebugConfig()...)

	if c.ctx == nil {
		problems = append(problems, "context cannot be nil")
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

func (c *config) validateTransportConfig() []string {
	var problems []string

	if c.endpoint == "" {
		problems = append(problems, "endpoint cannot be empty")
	}
	if c.transport == nil {
		problems = append(problems, "transport cannot be nil")
	}
	for key := range c.header {
		if key == "" {
			problems = append(problems, "header name cannot be empty")
		}
	}

	return problems
}

func (c *config) validateBatchConfig() []string {
	var problems []string

	if c.debounce < 0 {
		problems = append(problems, "debounce must be non-negative")
	}
	if c.debounce > time.Minute {
		problems = append(problems, fmt.Sprintf("debounce %v > 1m would stall every query", c.debounce))
	}
	if c.maxBatchSize < 0 {
		problems = append(problems, "maxBatchSize must be non-negative")
	}

	return problems
}

func (c *config) validateCacheConfig() []string {
	var problems []string

	if c.cacheSize <= 0 {
		problems = append(problems, "cacheSize must be positive")
	}

	return problems
}

func (c *config) validateDebugConfig() []string {
	var problems []string

	if c.debug != nil && c.debug.Enabled {
		if c.debug.RequestIDGen == nil {
			problems = append(problems, "debug RequestIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			problems = append(problems, "logger must be set when debug is enabled")
		}
	}

	return problems
}

func (c *config) debugEnabled(flag func(*DebugConfig) bool) bool {
	return c.debug != nil && c.debug.Enabled && c.logger != nil && flag(c.debug)
}

func (c *config) requestID() string {
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		return c.debug.RequestIDGen()
	}
	return ""
}

func logQueries(d *DebugConfig) bool { return d.LogQueries }
func logBatches(d *DebugConfig) bool { return d.LogBatches }
func logCache(d *DebugConfig) bool   { return d.LogCache }

// reportPartialErrors hands errors of a successful response to the error
// handler and the warn log.
func (c *config) reportPartialErrors(resp *Response, requestID string) {
	if resp == nil || len(resp.Errors) == 0 {
		return
	}
	if c.logger != nil && c.debug != nil && c.debug.Enabled {
		c.logger.Warn("Query returned partial errors", "requestID", requestID, "errors", (&QueryError{Errors: resp.Errors}).Error())
	}
	if c.errorHandler != nil {
		c.errorHandler(resp.Errors)
	}
}
