package graphql

import (
	"context"
	"sync"
)

// CachedClient adds opt-in memoization to any Client. Calls made with the
// Cached option share one future per (query, variables); failed futures are
// evicted so they are never served again.
type CachedClient struct {
	inner           Client
	cfg             *config
	validationError error

	// mu spans lookup, delegation and store so that concurrent identical
	// calls collapse onto one upstream query. Client.Query must not block.
	mu    sync.Mutex
	cache *Cache[RequestBody, *Future]
}

var _ Client = (*CachedClient)(nil)

// NewCachedClient wraps inner. Only WithCacheSize, WithName, metrics and
// logging options apply.
func NewCachedClient(inner Client, options ...Option) *CachedClient {
	cfg := newConfig("cached", "", options)
	c := &CachedClient{
		inner: inner,
		cfg:   cfg,
	}

	c.validationError = cfg.validate(false, true)
	if inner == nil {
		c.validationError = appendProblem(c.validationError, "inner client cannot be nil")
	}
	if c.validationError == nil {
		// Capacity was validated above.
		c.cache, _ = NewCache[RequestBody, *Future](cfg.cacheSize)
	}

	return c
}

func appendProblem(err error, problem string) error {
	configErr, ok := err.(*ConfigError)
	if !ok {
		configErr = &ConfigError{}
	}
	configErr.Problems = append(configErr.Problems, problem)
	return configErr
}

// Query serves cached calls from the cache and forwards everything else.
func (c *CachedClient) Query(query string, variables any, opts ...CallOption) *Future {
	if c.validationError != nil {
		return settledFuture(nil, c.validationError)
	}

	if !newCallOptions(opts).cache {
		return c.inner.Query(query, variables, opts...)
	}

	key := RequestBody{Query: query, Variables: variables}

	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.cache.Get(key); ok {
		c.cfg.metrics.RecordCacheHit(c.cfg.name)
		if c.cfg.debugEnabled(logCache) {
			c.cfg.logger.Debug("Cache hit", "query", query)
		}
		return f
	}

	c.cfg.metrics.RecordCacheMiss(c.cfg.name)
	if c.cfg.debugEnabled(logCache) {
		c.cfg.logger.Debug("Cache miss", "query", query)
	}

	f := c.inner.Query(query, variables, opts...)
	if c.cache.Set(key, f) {
		c.cfg.metrics.RecordCacheEviction(c.cfg.name, EvictCapacity)
	}
	c.cfg.metrics.RecordCacheSize(c.cfg.name, c.cache.Len())

	// The callback may run inline when f is already settled, so it only
	// touches the cache's own lock.
	f.whenSettled(func(_ *Response, err error) {
		if err == nil {
			return
		}
		if c.cache.DropValue(f) > 0 {
			c.cfg.metrics.RecordCacheEviction(c.cfg.name, EvictFailed)
			c.cfg.metrics.RecordCacheSize(c.cfg.name, c.cache.Len())
			if c.cfg.debugEnabled(logCache) {
				c.cfg.logger.Debug("Evicted failed query", "query", query, "error", err.Error())
			}
		}
	})

	return f
}

// Size delegates to the wrapped client.
func (c *CachedClient) Size() int {
	if c.inner == nil {
		return 0
	}
	return c.inner.Size()
}

// Wait delegates to the wrapped client.
func (c *CachedClient) Wait(ctx context.Context) error {
	if c.inner == nil {
		return nil
	}
	return c.inner.Wait(ctx)
}

// Purge empties the cache.
func (c *CachedClient) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache != nil {
		c.cache.Purge()
		c.cfg.metrics.RecordCacheSize(c.cfg.name, 0)
	}
}

// ValidationError returns the configuration error found at construction.
func (c *CachedClient) ValidationError() error {
	return c.validationError
}
