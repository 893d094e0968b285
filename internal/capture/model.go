// Package capture defines the capture record, its stored key/value encoding and
// the CDX line format used on the wire.
package capture

const (
	// KeySeparator joins the urlkey and the timestamp in a stored key. Canonical
	// urlkeys never contain it, and it sorts before every byte they do contain.
	KeySeparator byte = ' '

	// FieldSeparator joins the stored value fields and the wire columns.
	FieldSeparator byte = ' '

	// TimestampWidth is the fixed number of decimal digits of a stored timestamp.
	TimestampWidth = 14

	// MaxTimestamp is the largest timestamp that fits in TimestampWidth digits.
	MaxTimestamp int64 = 99999999999999

	// Placeholder marks an unknown or absent value on the wire.
	Placeholder = "-"

	// HeaderPrefix starts a legacy CDX header line, which ingest skips.
	HeaderPrefix = " CDX"

	wireFieldCount  = 11
	valueFieldCount = 8
)

// Capture is one observed fetch of a URL.
type Capture struct {
	URLKey           string `json:"urlkey"`           // URLKey is the canonical form of Original.
	Timestamp        int64  `json:"timestamp"`        // Timestamp is the capture time as yyyyMMddHHmmss.
	Original         string `json:"original"`         // Original is the URL as crawled.
	MimeType         string `json:"mimetype"`         // MimeType is the content type reported by the server.
	Status           int    `json:"status"`           // Status is the HTTP status code, 0 when unknown.
	Digest           string `json:"digest"`           // Digest is the content hash.
	RedirectURL      string `json:"redirecturl"`      // RedirectURL is the redirect target, "-" when none.
	Length           int64  `json:"length"`           // Length is the record length, 0 when unknown.
	CompressedOffset int64  `json:"compressedoffset"` // CompressedOffset locates the record in File.
	File             string `json:"file"`             // File names the container holding the content.
}
