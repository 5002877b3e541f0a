// Package graphql is a GraphQL client built from three composable layers:
//
//   - DirectClient sends one HTTP request per query
//   - BatchClient debounces queries into a single JSON-array request and
//     serializes rounds so batches never overlap on the wire
//   - CachedClient wraps any Client with an opt-in, bounded LRU cache keyed by
//     (query, variables) compared structurally
//
// Every client returns a *Future from Query and tracks outstanding queries so
// callers can Wait for all work to drain.
//
// Typical usage:
//
//	base := graphql.NewBatchClient("https://api.example.com/graphql",
//	    graphql.WithDebounce(5*time.Millisecond),
//	    graphql.WithMetrics(),
//	)
//	client := graphql.NewCachedClient(base, graphql.WithCacheSize(50))
//
//	resp, err := client.Query(`query { viewer { id } }`, nil, graphql.Cached()).Await(ctx)
//
// Responses with data and errors succeed by default; pass RejectAnyError to
// fail on any reported error. Transport failures surface as *RequestError or
// *ParseError, query failures as *QueryError.
//
// Queries are opaque strings: nothing is parsed or validated client side,
// and failed calls are never retried.
package graphql
