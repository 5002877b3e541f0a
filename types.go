package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// Client is the contract shared by DirectClient, BatchClient and CachedClient
// so the three compose transparently.
type Client interface {
	// Query issues query with variables and returns immediately.
	Query(query string, variables any, opts ...CallOption) *Future
	// Size reports the number of queries that have not settled yet.
	Size() int
	// Wait blocks until every outstanding query has settled.
	Wait(ctx context.Context) error
}

// RequestBody is one query invocation as it appears on the wire.
type RequestBody struct {
	Query     string `json:"query"`
	Variables any    `json:"variables,omitempty"`
}

// GraphQLError is a single entry of a response's "errors" list.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Response is a parsed GraphQL payload. Data is kept raw so callers decide
// what to decode it into.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

var jsonNull = []byte("null")

// HasData reports whether the response carries a non-null "data" member.
func (r *Response) HasData() bool {
	if r == nil {
		return false
	}
	trimmed := bytes.TrimSpace(r.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, jsonNull)
}

// Decode unmarshals the "data" member into v. It is a no-op without data.
func (r *Response) Decode(v any) error {
	if !r.HasData() {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// Request is the descriptor handed to a Transport.
type Request struct {
	Method string
	Header http.Header
	Body   []byte
}

// Transport performs the actual round trip to the GraphQL endpoint.
// Implementations must not interpret the status code; classification happens
// in the client.
type Transport interface {
	Do(ctx context.Context, endpoint string, req *Request) (*http.Response, error)
}

// TransportFunc adapts a plain function to the Transport interface.
type TransportFunc func(ctx context.Context, endpoint string, req *Request) (*http.Response, error)

// Do calls f.
func (f TransportFunc) Do(ctx context.Context, endpoint string, req *Request) (*http.Response, error) {
	return f(ctx, endpoint, req)
}

// ErrorHandler receives the errors of responses that succeeded with partial data.
type ErrorHandler func(errs []GraphQLError)

// Option configures a client at construction time.
type Option func(*config)

// CallOption adjusts a single Query call.
type CallOption func(*callOptions)

type callOptions struct {
	cache          bool
	rejectAnyError bool
}

func newCallOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Cached opts the call into the CachedClient cache. Other clients ignore it.
func Cached() CallOption {
	return func(o *callOptions) {
		o.cache = true
	}
}

// RejectAnyError makes the call fail with a *QueryError whenever the response
// carries errors, even if data is present too.
func RejectAnyError() CallOption {
	return func(o *callOptions) {
		o.rejectAnyError = true
	}
}
