package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// newRequest encodes payload (a RequestBody or a slice of them) as a JSON
// POST. HTML characters are not escaped so queries go out as written.
func newRequest(payload any, header http.Header) (*Request, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}

	h := header.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Set("Content-Type", "application/json")

	return &Request{
		Method: http.MethodPost,
		Header: h,
		Body:   bytes.TrimRight(buf.Bytes(), "\n"),
	}, nil
}

// HTTPTransport sends requests with a net/http client.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client; nil selects a client with a 30s timeout.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPTransport{client: client}
}

// Do performs the round trip.
func (t *HTTPTransport) Do(ctx context.Context, endpoint string, req *Request) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	httpReq.Header = req.Header.Clone()
	return t.client.Do(httpReq)
}

// RestyTransport sends requests with a resty client, so its retry, proxy
// and TLS settings apply. The body is left unparsed for the classifier.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport wraps client; nil selects resty.New().
func NewRestyTransport(client *resty.Client) *RestyTransport {
	if client == nil {
		client = resty.New()
	}
	return &RestyTransport{client: client}
}

// Do performs the round trip.
func (t *RestyTransport) Do(ctx context.Context, endpoint string, req *Request) (*http.Response, error) {
	r := t.client.R().
		SetContext(ctx).
		SetBody(req.Body).
		SetDoNotParseResponse(true)
	for key, values := range req.Header {
		for _, v := range values {
			r.Header.Add(key, v)
		}
	}

	resp, err := r.Execute(req.Method, endpoint)
	if err != nil {
		return nil, err
	}
	return resp.RawResponse, nil
}
