package graphql

import (
	"context"
	"fmt"
)

// Query is a query document tagged with its variables type P and result type
// R. The tags only exist for Execute; on the wire it is the plain string.
type Query[P, R any] string

// Result is a decoded response. Errors holds the non-fatal errors of a
// partial success.
type Result[R any] struct {
	Data   R
	Errors []GraphQLError
}

// Execute issues q on c, waits for it and decodes the data into R.
func Execute[P, R any](ctx context.Context, c Client, q Query[P, R], variables P, opts ...CallOption) (*Result[R], error) {
	resp, err := c.Query(string(q), variables, opts...).Await(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result[R]{Errors: resp.Errors}
	if err := resp.Decode(&result.Data); err != nil {
		return nil, fmt.Errorf("graphql: decode data: %w", err)
	}
	return result, nil
}
