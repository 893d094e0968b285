// Package cdxindex is the entry point to a capture index: ingest CDX lines into
// named collections and query them by URL.
package cdxindex

import (
	"bufio"
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/iamBelugaa/cdxindex/internal/capture"
	"github.com/iamBelugaa/cdxindex/internal/datastore"
	"github.com/iamBelugaa/cdxindex/pkg/errors"
	"github.com/iamBelugaa/cdxindex/pkg/options"
)

// ErrClosed is returned by every operation started after Close.
var ErrClosed = datastore.ErrDataStoreClosed

type Instance struct {
	store   *datastore.DataStore
	options *options.Options
	log     *zap.SugaredLogger
}

func NewInstance(ctx context.Context, log *zap.SugaredLogger, opts ...options.OptionFunc) (*Instance, error) {
	defaultOpts := options.DefaultOptions()
	for _, opt := range opts {
		opt(&defaultOpts)
	}

	store, err := datastore.New(ctx, log, &defaultOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cdxindex: %w", err)
	}

	log.Infow(
		"Cdxindex instance initialized successfully",
		"dataDir", defaultOpts.DataDir,
		"maxLineSize", options.FormatBytes(uint64(defaultOpts.MaxLineSize)),
	)

	return &Instance{store: store, options: &defaultOpts, log: log}, nil
}

// Options returns the effective configuration.
func (i *Instance) Options() options.Options {
	return *i.options
}

// Ingest reads CDX lines from r and stores them in collection, creating the
// collection if needed. Either every capture in r is committed, durably, or
// none is: the first malformed line aborts the request with a ParseError.
func (i *Instance) Ingest(ctx context.Context, collection string, r io.Reader) (int, error) {
	i.log.Infow("Ingest request received", "collection", collection)

	idx, _, err := i.store.GetIndex(ctx, collection, true)
	if err != nil {
		return 0, err
	}

	batch := idx.NewBatch()
	defer func() {
		if err := batch.Close(); err != nil {
			i.log.Errorw("Failed to release batch", "collection", collection, "error", err)
		}
	}()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, i.options.MaxLineSize)), i.options.MaxLineSize)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if i.options.Verbose {
			i.log.Debugw("Ingest line", "collection", collection, "lineNumber", lineNumber, "line", line)
		}

		if strings.TrimSpace(line) == "" || capture.IsHeader(line) {
			continue
		}

		c, err := capture.ParseLine(line)
		if err != nil {
			if pe, ok := errors.AsParseError(err); ok {
				pe.WithLineNumber(lineNumber)
			}
			i.log.Warnw("Rejected ingest request", "collection", collection, "lineNumber", lineNumber, "error", err)
			return 0, err
		}

		if err := batch.Put(c); err != nil {
			return 0, err
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, readError(err, lineNumber+1, i.options.MaxLineSize)
	}

	if batch.Len() == 0 {
		return 0, nil
	}

	if err := batch.Commit(); err != nil {
		return 0, err
	}

	i.log.Infow("Ingest request completed", "collection", collection, "added", batch.Len())
	return batch.Len(), nil
}

// Query looks up captures in collection. found is false, with a nil error, when
// the collection does not exist; Query never creates a collection.
func (i *Instance) Query(ctx context.Context, collection string, q Query) (seq iter.Seq2[*capture.Capture, error], found bool, err error) {
	i.log.Infow("Query request received", "collection", collection, "url", q.URL, "matchType", q.MatchType)

	q, err = normalizeQuery(q)
	if err != nil {
		return nil, false, err
	}

	idx, found, err := i.store.GetIndex(ctx, collection, false)
	if err != nil || !found {
		return nil, found, err
	}

	return idx.Scan(ctx, q.Range()), true, nil
}

// Collections lists the collections present on disk.
func (i *Instance) Collections() ([]string, error) {
	return i.store.Collections()
}

// Close closes every open collection. It must be called exactly once, at shutdown.
func (i *Instance) Close() error {
	i.log.Infow("Close request received")
	return i.store.Close()
}

func readError(err error, lineNumber, maxLineSize int) error {
	if stdErrors.Is(err, bufio.ErrTooLong) {
		return errors.NewParseError(
			err, errors.ErrParseInvalidField,
			fmt.Sprintf("line exceeds maximum size of %s", options.FormatBytes(uint64(maxLineSize))),
		).
			WithLineNumber(lineNumber)
	}

	return errors.NewParseError(err, errors.ErrIOReadFailed, "Failed to read request body").
		WithLineNumber(lineNumber)
}
