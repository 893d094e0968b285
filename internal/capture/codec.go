package capture

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/iamBelugaa/cdxindex/pkg/errors"
)

// KeyPrefix returns the key prefix shared by every capture of urlkey, and by no
// capture of any other urlkey.
func KeyPrefix(urlkey string) []byte {
	prefix := make([]byte, 0, len(urlkey)+1)
	prefix = append(prefix, urlkey...)
	return append(prefix, KeySeparator)
}

// EncodeKey returns urlkey, the separator and the zero padded timestamp. Byte
// order of keys is urlkey order, then chronological order.
func (c *Capture) EncodeKey() []byte {
	key := make([]byte, 0, len(c.URLKey)+1+TimestampWidth)
	key = append(key, c.URLKey...)
	key = append(key, KeySeparator)
	return fmt.Appendf(key, "%0*d", TimestampWidth, c.Timestamp)
}

// EncodeValue serializes the remaining fields in a fixed order.
func (c *Capture) EncodeValue() []byte {
	value := make([]byte, 0, len(c.Original)+len(c.MimeType)+len(c.Digest)+len(c.RedirectURL)+len(c.File)+48)

	value = append(value, c.Original...)
	value = append(value, FieldSeparator)
	value = append(value, c.MimeType...)
	value = append(value, FieldSeparator)
	value = strconv.AppendInt(value, int64(c.Status), 10)
	value = append(value, FieldSeparator)
	value = append(value, c.Digest...)
	value = append(value, FieldSeparator)
	value = append(value, c.RedirectURL...)
	value = append(value, FieldSeparator)
	value = strconv.AppendInt(value, c.Length, 10)
	value = append(value, FieldSeparator)
	value = strconv.AppendInt(value, c.CompressedOffset, 10)
	value = append(value, FieldSeparator)
	return append(value, c.File...)
}

// Decode rebuilds a capture from a stored key and value.
func Decode(key, value []byte) (*Capture, error) {
	sep := bytes.LastIndexByte(key, KeySeparator)
	if sep < 0 || len(key)-sep-1 != TimestampWidth {
		return nil, decodeError(key, "stored key has no fixed width timestamp")
	}

	timestamp, err := strconv.ParseInt(string(key[sep+1:]), 10, 64)
	if err != nil {
		return nil, decodeError(key, "stored key timestamp is not numeric")
	}

	fields := bytes.Split(value, []byte{FieldSeparator})
	if len(fields) != valueFieldCount {
		return nil, decodeError(key, fmt.Sprintf("stored value has %d fields, expected %d", len(fields), valueFieldCount))
	}

	status, err := strconv.Atoi(string(fields[2]))
	if err != nil {
		return nil, decodeError(key, "stored status is not numeric")
	}

	length, err := strconv.ParseInt(string(fields[5]), 10, 64)
	if err != nil {
		return nil, decodeError(key, "stored length is not numeric")
	}

	offset, err := strconv.ParseInt(string(fields[6]), 10, 64)
	if err != nil {
		return nil, decodeError(key, "stored offset is not numeric")
	}

	return &Capture{
		URLKey:           string(key[:sep]),
		Timestamp:        timestamp,
		Original:         string(fields[0]),
		MimeType:         string(fields[1]),
		Status:           status,
		Digest:           string(fields[3]),
		RedirectURL:      string(fields[4]),
		Length:           length,
		CompressedOffset: offset,
		File:             string(fields[7]),
	}, nil
}

func decodeError(key []byte, msg string) *errors.IndexError {
	return errors.NewIndexError(nil, errors.ErrRecordDeserialization, msg).
		WithOperation("decode").
		WithKey(string(key))
}
