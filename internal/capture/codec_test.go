package capture

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamBelugaa/cdxindex/pkg/errors"
)

func sampleCaptures() []*Capture {
	return []*Capture{
		{
			URLKey:           "com,example)/",
			Timestamp:        20210101000000,
			Original:         "http://example.com/",
			MimeType:         "text/html",
			Status:           200,
			Digest:           "abc123",
			RedirectURL:      "-",
			Length:           1024,
			CompressedOffset: 0,
			File:             "warc0.gz",
		},
		{
			URLKey:           "com,example)/old?a=1&b=2",
			Timestamp:        19960101000000,
			Original:         "http://www.example.com/old?b=2&a=1",
			MimeType:         "warc/revisit",
			Status:           301,
			Digest:           "sha1:3I42H3S6NNFQ2MSVX7XZKYAYSCX5QBYJ",
			RedirectURL:      "http://example.com/new",
			Length:           0,
			CompressedOffset: 987654321,
			File:             "crawl/2021/part-00001.warc.gz",
		},
		{
			URLKey:           "org,archive)/",
			Timestamp:        0,
			Original:         "archive.org",
			MimeType:         "unk",
			Status:           0,
			Digest:           "-",
			RedirectURL:      "-",
			Length:           0,
			CompressedOffset: 0,
			File:             "x",
		},
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	for _, c := range sampleCaptures() {
		decoded, err := Decode(c.EncodeKey(), c.EncodeValue())
		require.NoError(t, err)
		require.Equal(t, c, decoded)
	}
}

func TestEncodeKeyLayout(t *testing.T) {
	c := &Capture{URLKey: "com,example)/", Timestamp: 42}
	require.Equal(t, "com,example)/ 00000000000042", string(c.EncodeKey()))
	require.True(t, bytes.HasPrefix(c.EncodeKey(), KeyPrefix("com,example)/")))
}

func TestEncodeKeyOrdersChronologically(t *testing.T) {
	timestamps := []int64{5, 19960101000000, 20010101000000, 20210101000000, MaxTimestamp}
	for i := 1; i < len(timestamps); i++ {
		earlier := (&Capture{URLKey: "com,example)/", Timestamp: timestamps[i-1]}).EncodeKey()
		later := (&Capture{URLKey: "com,example)/", Timestamp: timestamps[i]}).EncodeKey()
		require.Negative(t, bytes.Compare(earlier, later))
	}
}

func TestKeyPrefixDoesNotMatchLongerURLKey(t *testing.T) {
	longer := (&Capture{URLKey: "com,example)/ab", Timestamp: 20210101000000}).EncodeKey()
	require.False(t, bytes.HasPrefix(longer, KeyPrefix("com,example)/a")))

	sibling := (&Capture{URLKey: "com,example2)/", Timestamp: 20210101000000}).EncodeKey()
	require.False(t, bytes.HasPrefix(sibling, KeyPrefix("com,example)/")))
}

func TestDecodeRejectsCorruptRecords(t *testing.T) {
	valid := sampleCaptures()[0]

	tests := []struct {
		name  string
		key   []byte
		value []byte
	}{
		{"no separator", []byte("com,example)/"), valid.EncodeValue()},
		{"short timestamp", []byte("com,example)/ 2021"), valid.EncodeValue()},
		{"non numeric timestamp", []byte("com,example)/ 2021010100000x"), valid.EncodeValue()},
		{"missing fields", valid.EncodeKey(), []byte("http://example.com/ text/html 200")},
		{"non numeric status", valid.EncodeKey(), []byte("u m xx d - 1 2 f")},
		{"non numeric length", valid.EncodeKey(), []byte("u m 200 d - x 2 f")},
		{"non numeric offset", valid.EncodeKey(), []byte("u m 200 d - 1 x f")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.key, tt.value)
			require.Error(t, err)

			ie, ok := errors.AsIndexError(err)
			require.True(t, ok)
			require.Equal(t, errors.ErrRecordDeserialization, ie.Code())
			require.Equal(t, string(tt.key), ie.Key())
		})
	}
}
