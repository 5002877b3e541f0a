package graphql

import (
	"encoding/json"
	"io"
	"net/http"
)

// handleResponse reads the whole body and decodes it into v. Non-2xx statuses
// become *RequestError and undecodable bodies *ParseError; both keep the raw
// body text.
func handleResponse(resp *http.Response, v any) error {
	var body []byte
	if resp.Body != nil {
		var err error
		body, err = io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return err
		}
	}
	bodyText := string(body)

	if !isOK(resp.StatusCode) {
		return &RequestError{
			Response:   resp,
			StatusCode: resp.StatusCode,
			BodyText:   bodyText,
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &ParseError{
			Response:   resp,
			StatusCode: resp.StatusCode,
			BodyText:   bodyText,
			Cause:      err,
		}
	}
	return nil
}

func isOK(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}

// RejectErrorResponses is the lenient policy: only responses without data fail.
func RejectErrorResponses(resp *Response) error {
	if !resp.HasData() {
		return &QueryError{Errors: errorsOf(resp)}
	}
	return nil
}

// RejectAnyErrorResponses is the strict policy: any reported error fails.
func RejectAnyErrorResponses(resp *Response) error {
	if resp != nil && len(resp.Errors) > 0 {
		return &QueryError{Errors: resp.Errors}
	}
	return RejectErrorResponses(resp)
}

func errorsOf(resp *Response) []GraphQLError {
	if resp == nil {
		return nil
	}
	return resp.Errors
}

// classifyResult applies the call's strictness policy to a parsed response.
func classifyResult(resp *Response, opts callOptions) error {
	if opts.rejectAnyError {
		return RejectAnyErrorResponses(resp)
	}
	return RejectErrorResponses(resp)
}
