package graphql

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type pendingEntry struct {
	body      RequestBody
	opts      callOptions
	future    *Future
	requestID string
	start     time.Time
}

// BatchClient coalesces queries issued within a debounce window into a single
// transport call carrying a JSON array, and splits the array response back
// to the callers by position.
//
// Rounds run on a serial pipeline: a round starts only after the previous
// one has finished, so at most one transport call is outstanding per client.
// The queue is captured when the timer fires; queries issued after that start
// a new queue and a new debounce timer, even while earlier rounds still wait
// on the pipeline.
type BatchClient struct {
	cfg             *config
	tracker         *Tracker
	validationError error

	mu      sync.Mutex
	pending []*pendingEntry
	timer   *time.Timer
	tail    chan struct{} // closed when the last scheduled round finishes
	closed  bool
}

var _ Client = (*BatchClient)(nil)

// NewBatchClient constructs a batching client for endpoint.
func NewBatchClient(endpoint string, options ...Option) *BatchClient {
	cfg := newConfig("batched", endpoint, options)
	c := &BatchClient{
		cfg:     cfg,
		tracker: NewTracker(),
		tail:    closedChan(),
	}
	cfg.trackInFlight(c.tracker)
	c.validationError = cfg.validate(true, false)
	return c
}

// Query adds query to the current batch and returns its future.
func (c *BatchClient) Query(query string, variables any, opts ...CallOption) *Future {
	if c.validationError != nil {
		return settledFuture(nil, c.validationError)
	}

	entry := &pendingEntry{
		body:      RequestBody{Query: query, Variables: variables},
		opts:      newCallOptions(opts),
		future:    newFuture(),
		requestID: c.cfg.requestID(),
		start:     time.Now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return settledFuture(nil, ErrClosed)
	}

	c.tracker.Add(entry.future)
	c.pending = append(c.pending, entry)

	if c.cfg.debugEnabled(logQueries) {
		c.cfg.logger.Debug("Query queued", "requestID", entry.requestID, "queued", len(c.pending))
	}

	switch {
	case c.cfg.maxBatchSize > 0 && len(c.pending) >= c.cfg.maxBatchSize:
		c.fireLocked()
	case c.timer == nil:
		c.armTimerLocked()
	}

	return entry.future
}

func (c *BatchClient) armTimerLocked() {
	var t *time.Timer
	t = time.AfterFunc(c.cfg.debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.timer != t {
			return
		}
		c.fireLocked()
	})
	c.timer = t
}

// fireLocked hands the whole queue to a new round and clears the timer, so
// the next Query starts a fresh queue.
func (c *BatchClient) fireLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	entries := c.pending
	c.pending = nil
	if len(entries) == 0 {
		return
	}

	prev := c.tail
	done := make(chan struct{})
	c.tail = done

	go func() {
		defer close(done)
		<-prev
		c.dispatch(entries)
	}()
}

func (c *BatchClient) dispatch(entries []*pendingEntry) {
	bodies := make([]RequestBody, len(entries))
	for i, entry := range entries {
		bodies[i] = entry.body
	}

	if c.cfg.debugEnabled(logBatches) {
		c.cfg.logger.Debug("Dispatching batch", "size", len(entries), "endpoint", c.cfg.endpoint)
	}

	var responses []Response
	statusCode, err := c.cfg.roundTrip("graphql.batch", bodies, len(entries), &responses)
	if err == nil && len(responses) != len(entries) {
		err = &ParseError{
			StatusCode: statusCode,
			Cause:      fmt.Errorf("%w: got %d responses for %d queries", ErrBatchLengthMismatch, len(responses), len(entries)),
		}
	}

	if err != nil {
		if c.cfg.debugEnabled(logBatches) {
			c.cfg.logger.Warn("Batch failed", "size", len(entries), "error", err.Error())
		}
		for _, entry := range entries {
			c.cfg.complete(entry.future, nil, err, entry.opts, entry.requestID, entry.start)
		}
		return
	}

	for i, entry := range entries {
		c.cfg.complete(entry.future, &responses[i], nil, entry.opts, entry.requestID, entry.start)
	}
}

// Size reports the number of queries that have not settled yet.
func (c *BatchClient) Size() int {
	return c.tracker.Size()
}

// Wait blocks until every outstanding query has settled or ctx ends.
func (c *BatchClient) Wait(ctx context.Context) error {
	return c.tracker.Wait(ctx)
}

// Flush sends the queued queries now instead of waiting for the debounce
// timer.
func (c *BatchClient) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fireLocked()
}

// Close flushes the queue, rejects later queries with ErrClosed and waits
// for the pipeline to finish or ctx to end.
func (c *BatchClient) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.fireLocked()
	tail := c.tail
	c.mu.Unlock()

	select {
	case <-tail:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ValidationError returns the configuration error found at construction.
func (c *BatchClient) ValidationError() error {
	return c.validationError
}
