package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/iamBelugaa/cdxindex/pkg/cdxindex"
	"github.com/iamBelugaa/cdxindex/pkg/errors"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// handleBanner answers with the banner line followed by one collection name per line.
func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	collections, err := s.instance.Collections()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, Banner)
	for _, name := range collections {
		fmt.Fprintln(w, name)
	}
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request, collection string) {
	defer r.Body.Close()

	added, err := s.instance.Ingest(r.Context(), collection, r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeText)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Added %d records\n", added)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request, collection string) {
	params := r.URL.Query()

	if params.Has("q") {
		writeText(w, http.StatusNotImplemented, "Query syntax is not supported, use url=\n")
		return
	}

	q, output, err := parseQuery(params.Get("url"), params.Get("matchType"), params.Get("limit"), params.Get("output"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	seq, found, err := s.instance.Query(r.Context(), collection, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if !found {
		writeText(w, http.StatusNotFound, "Collection does not exist\n")
		return
	}

	var rw rowWriter
	if output == outputJSON {
		rw = newJSONWriter(w)
	} else {
		rw = newTextWriter(w)
	}

	s.stream(w, r, rw, seq)
}

func parseQuery(url, matchType, limit, output string) (cdxindex.Query, string, error) {
	q := cdxindex.Query{URL: url}

	mt, err := cdxindex.ParseMatchType(matchType)
	if err != nil {
		return q, "", err
	}
	q.MatchType = mt

	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return q, "", errors.NewValidationError(err, errors.ErrValidationInvalidData, "limit must be an integer").
				WithField("limit").
				WithProvided(limit)
		}
		q.Limit = n
	}

	switch output {
	case "", outputText:
		return q, outputText, nil
	case outputJSON:
		return q, outputJSON, nil
	default:
		return q, "", errors.NewValidationError(nil, errors.ErrValidationInvalidData, fmt.Sprintf("Unsupported output %q", output)).
			WithField("output").
			WithExpected([]string{outputText, outputJSON}).
			WithProvided(output)
	}
}
