package graphql

import (
	"context"
	"time"
)

// DirectClient sends every query in its own transport call as soon as it is
// issued.
type DirectClient struct {
	cfg             *config
	tracker         *Tracker
	validationError error
}

var _ Client = (*DirectClient)(nil)

// NewDirectClient constructs a client for endpoint. Configuration problems
// are reported by ValidationError and fail every query.
func NewDirectClient(endpoint string, options ...Option) *DirectClient {
	cfg := newConfig("direct", endpoint, options)
	c := &DirectClient{
		cfg:     cfg,
		tracker: NewTracker(),
	}
	cfg.trackInFlight(c.tracker)
	c.validationError = cfg.validate(true, false)
	return c
}

// Query sends query right away.
func (c *DirectClient) Query(query string, variables any, opts ...CallOption) *Future {
	if c.validationError != nil {
		return settledFuture(nil, c.validationError)
	}

	callOpts := newCallOptions(opts)
	start := time.Now()
	requestID := c.cfg.requestID()
	body := RequestBody{Query: query, Variables: variables}

	if c.cfg.debugEnabled(logQueries) {
		c.cfg.logger.Debug("Sending query", "requestID", requestID, "endpoint", c.cfg.endpoint)
	}

	f := newFuture()
	c.tracker.Add(f)

	go func() {
		var resp Response
		_, err := c.cfg.roundTrip("graphql.query", body, 1, &resp)
		c.cfg.complete(f, &resp, err, callOpts, requestID, start)
	}()

	return f
}

// Size reports the number of queries that have not settled yet.
func (c *DirectClient) Size() int {
	return c.tracker.Size()
}

// Wait blocks until every outstanding query has settled or ctx ends.
func (c *DirectClient) Wait(ctx context.Context) error {
	return c.tracker.Wait(ctx)
}

// ValidationError returns the configuration error found at construction.
func (c *DirectClient) ValidationError() error {
	return c.validationError
}
