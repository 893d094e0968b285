package cdxindex

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iamBelugaa/cdxindex/internal/capture"
	"github.com/iamBelugaa/cdxindex/pkg/errors"
	"github.com/iamBelugaa/cdxindex/pkg/options"
)

const exampleLine = "com,example)/ 20210101000000 http://example.com/ text/html 200 abc123 - - 1024 0 warc0.gz"

func newTestInstance(t *testing.T) *Instance {
	t.Helper()

	inst, err := NewInstance(context.Background(), zap.NewNop().Sugar(), options.WithDataDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = inst.Close() })

	return inst
}

func query(t *testing.T, inst *Instance, collection string, q Query) []*capture.Capture {
	t.Helper()

	seq, found, err := inst.Query(context.Background(), collection, q)
	require.NoError(t, err)
	require.True(t, found)

	var out []*capture.Capture
	for c, err := range seq {
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func cdxLine(url, ts string) string {
	return "- " + ts + " " + url + " text/html 200 sha1 - - 100 0 a.warc.gz"
}

func TestIngestAndQueryExample(t *testing.T) {
	inst := newTestInstance(t)

	added, err := inst.Ingest(context.Background(), "demo", strings.NewReader(exampleLine+"\n"))
	require.NoError(t, err)
	require.Equal(t, 1, added)

	got := query(t, inst, "demo", Query{URL: "http://example.com"})
	require.Len(t, got, 1)
	require.Equal(t, int64(20210101000000), got[0].Timestamp)
	require.Equal(t, "abc123", got[0].Digest)
	require.Equal(t, "warc0.gz", got[0].File)
}

func TestIngestSkipsHeaderAndBlankLines(t *testing.T) {
	inst := newTestInstance(t)

	body := " CDX N b a m s k r M S V g\r\n\r\n" + exampleLine + "\r\n\n"
	added, err := inst.Ingest(context.Background(), "demo", strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, 1, added)
}

func TestIngestIsIdempotent(t *testing.T) {
	inst := newTestInstance(t)

	for range 3 {
		_, err := inst.Ingest(context.Background(), "demo", strings.NewReader(exampleLine))
		require.NoError(t, err)
	}

	require.Len(t, query(t, inst, "demo", Query{URL: "example.com/"}), 1)
}

func TestIngestMalformedLineCommitsNothing(t *testing.T) {
	inst := newTestInstance(t)

	body := strings.Join([]string{
		cdxLine("http://a.com/", "20200101000000"),
		cdxLine("http://a.com/", "20200102000000"),
		"not a cdx line",
	}, "\n")

	_, err := inst.Ingest(context.Background(), "demo", strings.NewReader(body))
	require.Error(t, err)

	pe, ok := errors.AsParseError(err)
	require.True(t, ok)
	require.Equal(t, 3, pe.LineNumber())
	require.Equal(t, "not a cdx line", pe.Line())

	require.Empty(t, query(t, inst, "demo", Query{URL: "http://a.com/"}))
}

func TestIngestRejectsOversizedLine(t *testing.T) {
	inst, err := NewInstance(
		context.Background(), zap.NewNop().Sugar(),
		options.WithDataDir(t.TempDir()), options.WithMaxLineSize(options.MinMaxLineSize),
	)
	require.NoError(t, err)
	defer inst.Close()

	long := cdxLine("http://a.com/"+strings.Repeat("x", options.MinMaxLineSize), "20200101000000")
	_, err = inst.Ingest(context.Background(), "demo", strings.NewReader(long))

	pe, ok := errors.AsParseError(err)
	require.True(t, ok)
	require.Equal(t, 1, pe.LineNumber())
}

func TestIngestInvalidCollection(t *testing.T) {
	inst := newTestInstance(t)

	_, err := inst.Ingest(context.Background(), "../etc", strings.NewReader(exampleLine))
	_, ok := errors.AsValidationError(err)
	require.True(t, ok)
}

func TestQueryUnknownCollection(t *testing.T) {
	inst := newTestInstance(t)

	seq, found, err := inst.Query(context.Background(), "missing", Query{URL: "http://example.com/"})
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, seq)

	names, err := inst.Collections()
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestQueryValidation(t *testing.T) {
	inst := newTestInstance(t)

	tests := []struct {
		name  string
		query Query
		field string
	}{
		{"missing url", Query{}, "url"},
		{"bad match type", Query{URL: "a.com", MatchType: "regex"}, "matchType"},
		{"negative limit", Query{URL: "a.com", Limit: -1}, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := inst.Query(context.Background(), "demo", tt.query)
			ve, ok := errors.AsValidationError(err)
			require.True(t, ok)
			require.Equal(t, tt.field, ve.Field())
		})
	}
}

func TestQueryMatchTypes(t *testing.T) {
	inst := newTestInstance(t)

	body := strings.Join([]string{
		cdxLine("http://example.com/", "20200101000000"),
		cdxLine("http://example.com/a", "20200101000000"),
		cdxLine("http://example.com/ab", "20200101000000"),
		cdxLine("http://example.com:8080/", "20200101000000"),
		cdxLine("http://sub.example.com/", "20200101000000"),
		cdxLine("http://example2.com/", "20200101000000"),
	}, "\n")
	_, err := inst.Ingest(context.Background(), "demo", strings.NewReader(body))
	require.NoError(t, err)

	keys := func(cs []*capture.Capture) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.URLKey)
		}
		return out
	}

	require.Equal(t,
		[]string{"com,example)/a"},
		keys(query(t, inst, "demo", Query{URL: "http://example.com/a"})),
	)
	require.Equal(t,
		[]string{"com,example)/a", "com,example)/ab"},
		keys(query(t, inst, "demo", Query{URL: "http://example.com/a", MatchType: MatchPrefix})),
	)
	require.Equal(t,
		[]string{"com,example)/", "com,example)/a", "com,example)/ab"},
		keys(query(t, inst, "demo", Query{URL: "http://example.com/zzz", MatchType: MatchHost})),
	)
	require.Equal(t,
		[]string{"com,example)/", "com,example)/a", "com,example)/ab", "com,example,sub)/", "com,example:8080)/"},
		keys(query(t, inst, "demo", Query{URL: "example.com", MatchType: MatchDomain})),
	)
	require.Len(t, query(t, inst, "demo", Query{URL: "example.com", MatchType: MatchDomain, Limit: 2}), 2)
}

func TestParseMatchType(t *testing.T) {
	mt, err := ParseMatchType("")
	require.NoError(t, err)
	require.Equal(t, MatchExact, mt)

	mt, err = ParseMatchType("Domain")
	require.NoError(t, err)
	require.Equal(t, MatchDomain, mt)

	_, err = ParseMatchType("fuzzy")
	require.Error(t, err)
}

func TestQueryMatchTypeIsCaseInsensitive(t *testing.T) {
	inst := newTestInstance(t)

	body := cdxLine("http://a.com/x", "20200101000000") + "\n" + cdxLine("http://a.com/y", "20200101000000")
	_, err := inst.Ingest(context.Background(), "demo", strings.NewReader(body))
	require.NoError(t, err)

	for _, mt := range []MatchType{"host", "HOST", "Host"} {
		require.Len(t, query(t, inst, "demo", Query{URL: "http://a.com/", MatchType: mt}), 2, "matchType %q", mt)
	}
}
