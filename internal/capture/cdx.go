package capture

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/iamBelugaa/cdxindex/internal/canon"
	"github.com/iamBelugaa/cdxindex/pkg/errors"
)

// Wire column positions of the 11 column CDX format.
const (
	colURLKey = iota
	colTimestamp
	colOriginal
	colMimeType
	colStatus
	colDigest
	colRedirect
	colRobotFlags
	colLength
	colOffset
	colFile
)

var columnNames = [wireFieldCount]string{
	"urlkey", "timestamp", "original", "mimetype", "status", "digest",
	"redirecturl", "robotflags", "length", "compressedoffset", "file",
}

// IsHeader reports whether line is a legacy CDX header.
func IsHeader(line string) bool {
	return strings.HasPrefix(line, HeaderPrefix)
}

// ParseLine parses one wire line. The urlkey column is ignored and recomputed
// from the original URL; the robot flags column is ignored.
func ParseLine(line string) (*Capture, error) {
	fields := strings.Split(line, string(FieldSeparator))
	if len(fields) != wireFieldCount {
		return nil, errors.NewParseError(
			nil, errors.ErrParseFieldCount,
			fmt.Sprintf("expected %d fields, got %d", wireFieldCount, len(fields)),
		).
			WithLine(line)
	}

	for i, field := range fields {
		if field == "" {
			return nil, parseError(line, i, errors.ErrParseInvalidField, "empty field", nil)
		}
	}

	timestamp, err := strconv.ParseInt(fields[colTimestamp], 10, 64)
	if err != nil {
		return nil, parseError(line, colTimestamp, errors.ErrParseInvalidNumber, "invalid timestamp", err)
	}
	if timestamp < 0 || timestamp > MaxTimestamp {
		return nil, parseError(line, colTimestamp, errors.ErrParseInvalidNumber, "timestamp out of range", nil)
	}

	status, err := parseOptionalInt(fields[colStatus], 32)
	if err != nil {
		return nil, parseError(line, colStatus, errors.ErrParseInvalidNumber, "invalid status", err)
	}

	length, err := parseOptionalInt(fields[colLength], 64)
	if err != nil {
		return nil, parseError(line, colLength, errors.ErrParseInvalidNumber, "invalid length", err)
	}

	offset, err := strconv.ParseInt(fields[colOffset], 10, 64)
	if err != nil || offset < 0 {
		return nil, parseError(line, colOffset, errors.ErrParseInvalidNumber, "invalid compressed offset", err)
	}

	return &Capture{
		URLKey:           canon.Canonicalize(fields[colOriginal]),
		Timestamp:        timestamp,
		Original:         fields[colOriginal],
		MimeType:         fields[colMimeType],
		Status:           int(status),
		Digest:           fields[colDigest],
		RedirectURL:      fields[colRedirect],
		Length:           length,
		CompressedOffset: offset,
		File:             fields[colFile],
	}, nil
}

// String renders the capture as an 11 column CDX line.
func (c *Capture) String() string {
	var b strings.Builder
	b.Grow(len(c.URLKey) + len(c.Original) + len(c.MimeType) + len(c.Digest) + len(c.RedirectURL) + len(c.File) + 64)

	b.WriteString(c.URLKey)
	b.WriteByte(FieldSeparator)
	b.WriteString(FormatTimestamp(c.Timestamp))
	b.WriteByte(FieldSeparator)
	b.WriteString(c.Original)
	b.WriteByte(FieldSeparator)
	b.WriteString(c.MimeType)
	b.WriteByte(FieldSeparator)
	b.WriteString(formatOptionalInt(int64(c.Status)))
	b.WriteByte(FieldSeparator)
	b.WriteString(c.Digest)
	b.WriteByte(FieldSeparator)
	b.WriteString(c.RedirectURL)
	b.WriteByte(FieldSeparator)
	b.WriteString(Placeholder)
	b.WriteByte(FieldSeparator)
	b.WriteString(formatOptionalInt(c.Length))
	b.WriteByte(FieldSeparator)
	b.WriteString(strconv.FormatInt(c.CompressedOffset, 10))
	b.WriteByte(FieldSeparator)
	b.WriteString(c.File)
	return b.String()
}

// Fields returns the wire columns of the capture, in wire order.
func (c *Capture) Fields() []string {
	return strings.Split(c.String(), string(FieldSeparator))
}

// ColumnNames returns the names of the wire columns, in wire order.
func ColumnNames() []string {
	return slices.Clone(columnNames[:])
}

// FormatTimestamp renders a timestamp with its fixed width.
func FormatTimestamp(ts int64) string {
	return fmt.Sprintf("%0*d", TimestampWidth, ts)
}

func parseOptionalInt(field string, bitSize int) (int64, error) {
	if field == Placeholder {
		return 0, nil
	}

	n, err := strconv.ParseInt(field, 10, bitSize)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

func formatOptionalInt(n int64) string {
	if n == 0 {
		return Placeholder
	}
	return strconv.FormatInt(n, 10)
}

func parseError(line string, column int, code errors.ErrorCode, msg string, cause error) *errors.ParseError {
	return errors.NewParseError(cause, code, msg).
		WithLine(line).
		WithField(columnNames[column]).
		WithDetail("value", strings.Split(line, string(FieldSeparator))[column])
}
