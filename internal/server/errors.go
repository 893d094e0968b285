package server

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/iamBelugaa/cdxindex/pkg/cdxindex"
	"github.com/iamBelugaa/cdxindex/pkg/errors"
)

// writeError maps a typed error to a response. Client errors echo the message;
// storage and decode failures are logged and reported generically.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if pe, ok := errors.AsParseError(err); ok {
		s.log.Infow(
			"Rejected malformed input",
			"path", r.URL.Path,
			"lineNumber", pe.LineNumber(),
			"field", pe.Field(),
			"code", pe.Code(),
			"details", pe.Details(),
			"error", err,
		)
		writeText(w, http.StatusBadRequest, fmt.Sprintf("%s\nAt line: %s\n", pe.Error(), pe.Line()))
		return
	}

	if ve, ok := errors.AsValidationError(err); ok {
		s.log.Infow(
			"Rejected invalid request",
			"path", r.URL.Path,
			"field", ve.Field(),
			"provided", ve.Provided(),
			"expected", ve.Expected(),
			"code", ve.Code(),
			"error", err,
		)
		writeText(w, http.StatusBadRequest, ve.Error()+"\n")
		return
	}

	if stdErrors.Is(err, cdxindex.ErrClosed) {
		writeText(w, http.StatusServiceUnavailable, "Server is shutting down\n")
		return
	}

	if se, ok := errors.AsStorageError(err); ok {
		s.log.Errorw(
			"Storage failure",
			"path", r.URL.Path,
			"collection", se.Collection(),
			"storePath", se.Path(),
			"code", se.Code(),
			"details", se.Details(),
			"error", err,
		)
	} else if ie, ok := errors.AsIndexError(err); ok {
		s.log.Errorw(
			"Index failure",
			"path", r.URL.Path,
			"collection", ie.Collection(),
			"operation", ie.Operation(),
			"key", ie.Key(),
			"code", ie.Code(),
			"error", err,
		)
	} else {
		s.log.Errorw("Request failed", "path", r.URL.Path, "error", err)
	}

	writeText(w, http.StatusInternalServerError, "Internal server error\n")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", contentTypeText)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeText(w, http.StatusMethodNotAllowed, "Method not allowed\n")
}
