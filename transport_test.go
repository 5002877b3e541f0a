package graphql

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
)

func TestTransports(t *testing.T) {
	transports := map[string]Transport{
		"http":  NewHTTPTransport(nil),
		"resty": NewRestyTransport(nil),
	}

	for name, transport := range transports {
		t.Run(name, func(t *testing.T) {
			rec := newRecorder(t, func(string) (int, string) {
				return http.StatusOK, `{"data":"bar"}`
			})

			header := make(http.Header)
			header.Set("X-Api-Key", "secret")
			req, err := newRequest(RequestBody{Query: "foo"}, header)
			if err != nil {
				t.Fatalf(expectedNoErrorMsg, err)
			}

			resp, err := transport.Do(context.Background(), rec.URL(), req)
			if err != nil {
				t.Fatalf("Do() returned error: %v", err)
			}

			var out Response
			if err := handleResponse(resp, &out); err != nil {
				t.Fatalf("handleResponse() returned error: %v", err)
			}
			if got := dataString(t, &out); got != "bar" {
				t.Errorf("Expected data bar, got %q", got)
			}

			reqs := rec.requests()
			if len(reqs) != 1 || reqs[0] != `{"query":"foo"}` {
				t.Errorf("Unexpected requests %v", reqs)
			}
			if got := rec.header[0].Get("X-Api-Key"); got != "secret" {
				t.Errorf("Expected header to be forwarded, got %q", got)
			}
		})
	}
}

func TestTransportsPassNon2xxThrough(t *testing.T) {
	for name, transport := range map[string]Transport{
		"http":  NewHTTPTransport(nil),
		"resty": NewRestyTransport(nil),
	} {
		t.Run(name, func(t *testing.T) {
			rec := newRecorder(t, func(string) (int, string) {
				return http.StatusTeapot, "short and stout"
			})
			req, _ := newRequest(RequestBody{Query: "foo"}, nil)

			resp, err := transport.Do(context.Background(), rec.URL(), req)
			if err != nil {
				t.Fatalf("Transports must not fail on status codes: %v", err)
			}

			var out Response
			err = handleResponse(resp, &out)
			var requestErr *RequestError
			if !errors.As(err, &requestErr) || requestErr.BodyText != "short and stout" {
				t.Errorf("Expected request error with the raw body, got %v", err)
			}
		})
	}
}

func TestRestyClientOption(t *testing.T) {
	rec := newRecorder(t, func(string) (int, string) {
		return http.StatusOK, `{"data":{}}`
	})

	rc := resty.New().
		SetTimeout(5*time.Second).
		SetHeader("User-Agent", "graphql-client-test")
	client := NewDirectClient(rec.URL(), WithRestyClient(rc), WithHeader("X-Trace", "1"))

	if _, err := await(t, client.Query("{ a }", nil)); err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if got := rec.header[0].Get("User-Agent"); got != "graphql-client-test" {
		t.Errorf("Expected resty client headers to apply, got %q", got)
	}
	if got := rec.header[0].Get("X-Trace"); got != "1" {
		t.Errorf("Expected configured header, got %q", got)
	}
}

func TestHTTPClientOption(t *testing.T) {
	rec := newRecorder(t, func(string) (int, string) {
		return http.StatusOK, `{"data":{}}`
	})

	client := NewDirectClient(rec.URL(), WithHTTPClient(&http.Client{Timeout: time.Second}))
	if _, err := await(t, client.Query("{ a }", nil)); err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
}
