package errors

// ParseError describes an ingest line that does not follow the CDX wire format.
type ParseError struct {
	*baseError
	line       string
	lineNumber int
	field      string
}

// NewParseError creates a parse error for the given line.
func NewParseError(err error, code ErrorCode, msg string) *ParseError {
	return &ParseError{baseError: NewBaseError(err, code, msg)}
}

// WithDetail adds contextual information.
func (pe *ParseError) WithDetail(key string, value any) *ParseError {
	pe.baseError.WithDetail(key, value)
	return pe
}

// WithLine records the offending line verbatim.
func (pe *ParseError) WithLine(line string) *ParseError {
	pe.line = line
	return pe
}

// WithLineNumber records the 1-based position of the line in the request body.
func (pe *ParseError) WithLineNumber(n int) *ParseError {
	pe.lineNumber = n
	return pe
}

// WithField names the column that failed to parse.
func (pe *ParseError) WithField(field string) *ParseError {
	pe.field = field
	return pe
}

// Line returns the offending line.
func (pe *ParseError) Line() string {
	return pe.line
}

// LineNumber returns the 1-based line number, or 0 when unknown.
func (pe *ParseError) LineNumber() int {
	return pe.lineNumber
}

// Field returns the column that failed to parse, if any.
func (pe *ParseError) Field() string {
	return pe.field
}
