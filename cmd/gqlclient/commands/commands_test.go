package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type endpoint struct {
	mu      sync.Mutex
	bodies  []string
	headers []http.Header
	server  *httptest.Server
}

// newEndpoint answers each query in a batch, or a single query, with its own
// text as data. Queries containing "fail" get an error instead.
func newEndpoint(t *testing.T) *endpoint {
	t.Helper()
	e := &endpoint{}
	e.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		e.mu.Lock()
		e.bodies = append(e.bodies, string(raw))
		e.headers = append(e.headers, r.Header.Clone())
		e.mu.Unlock()

		answer := func(q map[string]any) map[string]any {
			query, _ := q["query"].(string)
			if strings.Contains(query, "fail") {
				return map[string]any{"errors": []map[string]any{{"message": "failed: " + query}}}
			}
			return map[string]any{"data": query}
		}

		var out any
		if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
			var batch []map[string]any
			require.NoError(t, json.Unmarshal(raw, &batch))
			resps := make([]map[string]any, len(batch))
			for i, q := range batch {
				resps[i] = answer(q)
			}
			out = resps
		} else {
			var q map[string]any
			require.NoError(t, json.Unmarshal(raw, &q))
			out = answer(q)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}))
	t.Cleanup(e.server.Close)
	return e
}

func (e *endpoint) requests() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.bodies...)
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeLines(t *testing.T, out string) []resultLine {
	t.Helper()
	var lines []resultLine
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var line resultLine
		require.NoError(t, dec.Decode(&line))
		lines = append(lines, line)
	}
	return lines
}

func TestQueryBatchesDocuments(t *testing.T) {
	e := newEndpoint(t)

	out, _, err := run(t, "query", "--endpoint", e.server.URL, "{ a }", "{ b }")
	require.NoError(t, err)

	lines := decodeLines(t, out)
	require.Len(t, lines, 2)
	assert.Equal(t, "{ a }", lines[0].Query)
	assert.JSONEq(t, `"{ a }"`, string(lines[0].Data))
	assert.JSONEq(t, `"{ b }"`, string(lines[1].Data))

	reqs := e.requests()
	require.Len(t, reqs, 1, "documents should share one request")
	assert.JSONEq(t, `[{"query":"{ a }"},{"query":"{ b }"}]`, reqs[0])
}

func TestQueryDirect(t *testing.T) {
	e := newEndpoint(t)

	_, _, err := run(t, "query", "-e", e.server.URL, "--direct", "{ a }", "{ b }")
	require.NoError(t, err)
	assert.Len(t, e.requests(), 2)
}

func TestQueryVariablesAndHeaders(t *testing.T) {
	e := newEndpoint(t)

	_, _, err := run(t, "query", "-e", e.server.URL,
		"--vars", `{"id":7}`,
		"-H", "Authorization: Bearer t0ken",
		"{ user }")
	require.NoError(t, err)

	reqs := e.requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `[{"query":"{ user }","variables":{"id":7}}]`, reqs[0])
	assert.Equal(t, "Bearer t0ken", e.headers[0].Get("Authorization"))
}

func TestQueryCacheDeduplicates(t *testing.T) {
	e := newEndpoint(t)

	out, _, err := run(t, "query", "-e", e.server.URL, "--cache", "--repeat", "3", "{ a }")
	require.NoError(t, err)

	assert.Len(t, decodeLines(t, out), 3)
	reqs := e.requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `[{"query":"{ a }"}]`, reqs[0])
}

func TestQueryReportsFailures(t *testing.T) {
	e := newEndpoint(t)

	out, _, err := run(t, "query", "-e", e.server.URL, "{ ok }", "{ fail }")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 queries failed")

	lines := decodeLines(t, out)
	require.Len(t, lines, 2)
	assert.Empty(t, lines[0].Error)
	assert.Equal(t, "failed: { fail }", lines[1].Error)
	require.Len(t, lines[1].Errors, 1)
}

func TestQueryConfigFile(t *testing.T) {
	e := newEndpoint(t)
	path := filepath.Join(t.TempDir(), "gqlclient.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: "+e.server.URL+"\ndirect: true\nheaders:\n  X-Tenant: acme\n"), 0o600))

	_, _, err := run(t, "--config", path, "query", "{ a }", "{ b }")
	require.NoError(t, err)

	assert.Len(t, e.requests(), 2, "direct: true from the file should apply")
	assert.Equal(t, "acme", e.headers[0].Get("X-Tenant"))
}

func TestQueryVerboseLogsToStderr(t *testing.T) {
	e := newEndpoint(t)

	_, stderr, err := run(t, "query", "-e", e.server.URL, "-v", "{ a }")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Dispatching batch")
}

func TestQueryRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no endpoint", []string{"query", "{ a }"}, "endpoint"},
		{"bad vars", []string{"query", "-e", "http://localhost", "--vars", "{", "{ a }"}, "invalid --vars"},
		{"bad header", []string{"query", "-e", "http://localhost", "-H", "nope", "{ a }"}, "invalid header"},
		{"bad repeat", []string{"query", "-e", "http://localhost", "--repeat", "0", "{ a }"}, "--repeat"},
		{"bad timeout", []string{"--timeout", "soon", "query", "-e", "http://localhost", "{ a }"}, "invalid --timeout"},
		{"no documents", []string{"query", "-e", "http://localhost"}, "arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graphql-client "))
}
