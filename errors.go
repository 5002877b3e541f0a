package graphql

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrRequest matches every *RequestError.
	ErrRequest = errors.New("graphql: request failed")

	// ErrParse matches every *ParseError.
	ErrParse = errors.New("graphql: response parse failed")

	// ErrQuery matches every *QueryError.
	ErrQuery = errors.New("graphql: query failed")

	// ErrClosed is returned for queries issued on a closed BatchClient.
	ErrClosed = errors.New("graphql: client closed")

	// ErrBatchLengthMismatch is the cause of the *ParseError returned when a
	// batch response does not have one element per request.
	ErrBatchLengthMismatch = errors.New("graphql: batch response length mismatch")
)

// RequestError is returned when the endpoint answers with a non-2xx status.
// The body is kept verbatim for diagnostics.
type RequestError struct {
	Response   *http.Response
	StatusCode int
	BodyText   string
}

func (e *RequestError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("Received status code %d", e.StatusCode)
}

// Is makes errors.Is(err, ErrRequest) report true.
func (e *RequestError) Is(target error) bool {
	return target == ErrRequest
}

// ParseError is returned when a 2xx body is not valid wire-format JSON.
type ParseError struct {
	Response   *http.Response
	StatusCode int
	BodyText   string
	Cause      error
}

func (e *ParseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("graphql: parse response (status %d): %v", e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("graphql: parse response (status %d)", e.StatusCode)
}

// Unwrap returns the decode error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is makes errors.Is(err, ErrParse) report true.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// QueryError is returned when a parsed response indicates failure under the
// call's strictness policy.
type QueryError struct {
	Errors []GraphQLError
}

func (e *QueryError) Error() string {
	if e == nil {
		return "<nil>"
	}
	messages := make([]string, len(e.Errors))
	for i, gqlErr := range e.Errors {
		messages[i] = gqlErr.Message
	}
	return strings.Join(messages, ", ")
}

// Is makes errors.Is(err, ErrQuery) report true.
func (e *QueryError) Is(target error) bool {
	return target == ErrQuery
}

// ConfigError lists every problem found while validating client options.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("graphql: configuration validation failed: %s", strings.Join(e.Problems, "; "))
}

// errorType names an error for metrics labels.
func errorType(err error) string {
	var (
		requestErr *RequestError
		parseErr   *ParseError
		queryErr   *QueryError
		configErr  *ConfigError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &requestErr):
		return "request"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &queryErr):
		return "query"
	case errors.As(err, &configErr):
		return "config"
	case errors.Is(err, ErrClosed):
		return "closed"
	default:
		return "transport"
	}
}
