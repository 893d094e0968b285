package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iamBelugaa/cdxindex/pkg/cdxindex"
	"github.com/iamBelugaa/cdxindex/pkg/options"
)

const exampleLine = "- 20210101000000 http://example.com/ text/html 200 abc123 - - 1024 0 warc0.gz"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := zap.NewNop().Sugar()
	inst, err := cdxindex.NewInstance(context.Background(), log, options.WithDataDir(t.TempDir()))
	require.NoError(t, err)

	ts := httptest.NewServer(New(inst, log).Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = inst.Close()
	})

	return ts
}

func do(t *testing.T, method, url, body string) (int, string, http.Header) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(data), resp.Header
}

func lines(body string) []string {
	body = strings.TrimSuffix(body, "\n")
	if body == "" {
		return nil
	}
	return strings.Split(body, "\n")
}

func TestBanner(t *testing.T) {
	ts := newTestServer(t)

	status, body, header := do(t, http.MethodGet, ts.URL+"/", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, Banner, body)
	require.NotEmpty(t, header.Get(requestIDHeader))

	status, _, _ = do(t, http.MethodDelete, ts.URL+"/", "")
	require.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestBannerListsCollections(t *testing.T) {
	ts := newTestServer(t)

	for _, col := range []string{"beta", "alpha"} {
		status, _, _ := do(t, http.MethodPost, ts.URL+"/"+col, exampleLine)
		require.Equal(t, http.StatusOK, status)
	}

	status, body, _ := do(t, http.MethodGet, ts.URL+"/", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, Banner+"alpha\nbeta\n", body)
}

func TestIngestThenQuery(t *testing.T) {
	ts := newTestServer(t)

	status, body, _ := do(t, http.MethodPost, ts.URL+"/mycol", exampleLine+"\n")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Added 1 records\n", body)

	status, body, header := do(t, http.MethodGet, ts.URL+"/mycol?url=http://example.com", "")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, header.Get("Content-Type"), "text/plain")

	got := lines(body)
	require.Len(t, got, 1)

	fields := strings.Fields(got[0])
	require.Equal(t, "com,example)/", fields[0])
	require.Equal(t, "20210101000000", fields[1])
	require.Equal(t, "abc123", fields[5])
	require.Equal(t, "warc0.gz", fields[10])
}

func TestIngestIsIdempotent(t *testing.T) {
	ts := newTestServer(t)

	for range 2 {
		status, _, _ := do(t, http.MethodPost, ts.URL+"/mycol", exampleLine)
		require.Equal(t, http.StatusOK, status)
	}

	_, body, _ := do(t, http.MethodGet, ts.URL+"/mycol?url=example.com/", "")
	require.Len(t, lines(body), 1)
}

func TestIngestMalformedLine(t *testing.T) {
	ts := newTestServer(t)

	payload := exampleLine + "\nbroken line\n"
	status, body, _ := do(t, http.MethodPost, ts.URL+"/mycol", payload)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, "\nAt line: broken line\n")

	status, body, _ = do(t, http.MethodGet, ts.URL+"/mycol?url=http://example.com/", "")
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, body)
}

func TestQueryErrors(t *testing.T) {
	ts := newTestServer(t)

	status, _, _ := do(t, http.MethodPost, ts.URL+"/mycol", exampleLine)
	require.Equal(t, http.StatusOK, status)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{"unknown collection", http.MethodGet, "/nope?url=example.com", http.StatusNotFound, "Collection does not exist\n"},
		{"missing url", http.MethodGet, "/mycol", http.StatusBadRequest, ""},
		{"query syntax", http.MethodGet, "/mycol?q=type:urlquery", http.StatusNotImplemented, ""},
		{"invalid name", http.MethodGet, "/bad.name?url=example.com", http.StatusBadRequest, ""},
		{"nested path", http.MethodPost, "/a/b", http.StatusBadRequest, ""},
		{"bad limit", http.MethodGet, "/mycol?url=example.com&limit=ten", http.StatusBadRequest, ""},
		{"bad match type", http.MethodGet, "/mycol?url=example.com&matchType=regex", http.StatusBadRequest, ""},
		{"bad output", http.MethodGet, "/mycol?url=example.com&output=xml", http.StatusBadRequest, ""},
		{"method", http.MethodPut, "/mycol", http.StatusMethodNotAllowed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := do(t, tt.method, ts.URL+tt.path, "")
			require.Equal(t, tt.status, status)
			if tt.body != "" {
				require.Equal(t, tt.body, body)
			}
		})
	}
}

func TestQueryJSONOutput(t *testing.T) {
	ts := newTestServer(t)

	status, _, _ := do(t, http.MethodPost, ts.URL+"/mycol", exampleLine)
	require.Equal(t, http.StatusOK, status)

	status, body, header := do(t, http.MethodGet, ts.URL+"/mycol?url=http://example.com/&output=json", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, contentTypeJSON, header.Get("Content-Type"))

	var rows [][]string
	require.NoError(t, json.Unmarshal([]byte(body), &rows))
	require.Len(t, rows, 2)
	require.Equal(t, "urlkey", rows[0][0])
	require.Equal(t, "20210101000000", rows[1][1])
	require.Equal(t, "warc0.gz", rows[1][10])

	status, body, _ = do(t, http.MethodGet, ts.URL+"/mycol?url=http://other.com/&output=json", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal([]byte(body), &rows))
	require.Len(t, rows, 1)
}

func TestQueryMatchTypeAndLimit(t *testing.T) {
	ts := newTestServer(t)

	payload := strings.Join([]string{
		"- 20200101000000 http://example.com/a text/html 200 d1 - - 10 0 a.gz",
		"- 20200102000000 http://example.com/a text/html 200 d2 - - 10 10 a.gz",
		"- 20200101000000 http://example.com/b text/html 200 d3 - - 10 20 a.gz",
		"- 20200101000000 http://news.example.com/ text/html 200 d4 - - 10 30 a.gz",
	}, "\n")
	status, body, _ := do(t, http.MethodPost, ts.URL+"/mycol", payload)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Added 4 records\n", body)

	_, body, _ = do(t, http.MethodGet, ts.URL+"/mycol?url=example.com/a", "")
	require.Len(t, lines(body), 2)

	_, body, _ = do(t, http.MethodGet, ts.URL+"/mycol?url=example.com/&matchType=host", "")
	require.Len(t, lines(body), 3)

	_, body, _ = do(t, http.MethodGet, ts.URL+"/mycol?url=example.com&matchType=domain", "")
	require.Len(t, lines(body), 4)

	_, body, _ = do(t, http.MethodGet, ts.URL+"/mycol?url=example.com&matchType=domain&limit=1", "")
	require.Len(t, lines(body), 1)
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "req-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "req-123", resp.Header.Get(requestIDHeader))
}
