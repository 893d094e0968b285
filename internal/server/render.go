package server

import (
	"bufio"
	"iter"
	"net/http"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/iamBelugaa/cdxindex/internal/capture"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeJSON = "application/json"
)

// rowWriter renders a query result incrementally.
type rowWriter interface {
	contentType() string
	begin() error
	row(c *capture.Capture) error
	end() error
}

type textWriter struct {
	w *bufio.Writer
}

func newTextWriter(w http.ResponseWriter) *textWriter {
	return &textWriter{w: bufio.NewWriter(w)}
}

func (t *textWriter) contentType() string { return contentTypeText }
func (t *textWriter) begin() error        { return nil }

func (t *textWriter) row(c *capture.Capture) error {
	if _, err := t.w.WriteString(c.String()); err != nil {
		return err
	}
	return t.w.WriteByte('\n')
}

func (t *textWriter) end() error {
	return t.w.Flush()
}

// jsonWriter emits a JSON array of arrays whose first row holds the column names.
type jsonWriter struct {
	w    *bufio.Writer
	rows int
}

func newJSONWriter(w http.ResponseWriter) *jsonWriter {
	return &jsonWriter{w: bufio.NewWriter(w)}
}

func (j *jsonWriter) contentType() string { return contentTypeJSON }

func (j *jsonWriter) begin() error {
	if err := j.w.WriteByte('['); err != nil {
		return err
	}
	return j.write(capture.ColumnNames())
}

func (j *jsonWriter) row(c *capture.Capture) error {
	return j.write(c.Fields())
}

func (j *jsonWriter) end() error {
	if _, err := j.w.WriteString("]\n"); err != nil {
		return err
	}
	return j.w.Flush()
}

func (j *jsonWriter) write(fields []string) error {
	values := make([]any, len(fields))
	for i, f := range fields {
		values[i] = f
	}

	list, err := structpb.NewList(values)
	if err != nil {
		return err
	}

	data, err := protojson.Marshal(list)
	if err != nil {
		return err
	}

	if j.rows > 0 {
		if _, err := j.w.WriteString(",\n"); err != nil {
			return err
		}
	}
	j.rows++

	_, err = j.w.Write(data)
	return err
}

// stream writes seq through rw. The status line is held back until the first
// capture is decoded, so a failure on the first read is still reported as an
// error response; later failures can only truncate the body.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, rw rowWriter, seq iter.Seq2[*capture.Capture, error]) {
	started := false
	start := func() error {
		if started {
			return nil
		}
		started = true
		w.Header().Set("Content-Type", rw.contentType())
		w.WriteHeader(http.StatusOK)
		return rw.begin()
	}

	count := 0
	for c, err := range seq {
		if err != nil {
			if !started {
				s.writeError(w, r, err)
				return
			}
			s.log.Errorw("Query aborted mid-stream", "path", r.URL.Path, "rows", count, "error", err)
			return
		}

		if err := start(); err != nil {
			s.log.Warnw("Failed to write response", "error", err)
			return
		}

		if err := rw.row(c); err != nil {
			s.log.Warnw("Failed to write response", "rows", count, "error", err)
			return
		}
		count++
	}

	if err := start(); err != nil {
		s.log.Warnw("Failed to write response", "error", err)
		return
	}

	if err := rw.end(); err != nil {
		s.log.Warnw("Failed to write response", "rows", count, "error", err)
		return
	}

	s.log.Debugw("Query completed", "path", r.URL.Path, "rows", count)
}
