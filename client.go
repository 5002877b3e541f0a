package graphql

import (
	"time"
)

// roundTrip sends payload to the endpoint and decodes the reply into out.
// It covers the transport stage of classification plus the span and metrics
// for the call; size is the number of queries carried. The status code is 0
// when the transport itself failed.
func (c *config) roundTrip(spanName string, payload any, size int, out any) (int, error) {
	start := time.Now()
	ctx, span := startRoundSpan(c.ctx, c.tracer, spanName, c.endpoint, size)

	statusCode := 0
	err := func() error {
		req, err := newRequest(payload, c.header)
		if err != nil {
			return err
		}

		resp, err := c.transport.Do(ctx, c.endpoint, req)
		if err != nil {
			return err
		}
		statusCode = resp.StatusCode

		return handleResponse(resp, out)
	}()

	endRoundSpan(span, statusCode, err)
	c.metrics.RecordRound(c.name, size, statusCode, time.Since(start))

	return statusCode, err
}

// complete applies the call's strictness policy to a parsed response (when
// the round succeeded) and settles f. Metrics are recorded first so they are
// current for anyone woken by the settlement.
func (c *config) complete(f *Future, resp *Response, err error, opts callOptions, requestID string, start time.Time) {
	if err == nil {
		err = classifyResult(resp, opts)
	}
	c.metrics.RecordQuery(c.name, err, time.Since(start))

	if err != nil {
		if c.debugEnabled(logQueries) {
			c.logger.Debug("Query failed", "requestID", requestID, "error", err.Error())
		}
		f.reject(err)
		return
	}

	c.reportPartialErrors(resp, requestID)
	if c.debugEnabled(logQueries) {
		c.logger.Debug("Query succeeded", "requestID", requestID, "duration", time.Since(start))
	}
	f.resolve(resp)
}

// trackInFlight mirrors the tracker size into the in-flight gauge.
func (c *config) trackInFlight(t *Tracker) {
	if c.metrics == nil {
		return
	}
	t.onChange = func(size int) {
		c.metrics.RecordInFlight(c.name, size)
	}
}
