// Package index answers range queries over one collection's captures.
package index

import (
	"context"
	"iter"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"github.com/iamBelugaa/cdxindex/internal/capture"
	"github.com/iamBelugaa/cdxindex/pkg/errors"
)

// New wraps an open store handle.
func New(collection string, db *pebble.DB, log *zap.SugaredLogger) *Index {
	return &Index{collection: collection, db: db, log: log}
}

// Collection returns the collection name this view belongs to.
func (idx *Index) Collection() string {
	return idx.collection
}

// Query yields every capture of urlkey in ascending timestamp order. The
// iterator over the live store is opened when ranging starts and closed when
// ranging stops, so captures committed while ranging may or may not appear.
func (idx *Index) Query(ctx context.Context, urlkey string) iter.Seq2[*capture.Capture, error] {
	prefix := capture.KeyPrefix(urlkey)
	return idx.Scan(ctx, Range{Lower: prefix, Upper: PrefixUpperBound(prefix)})
}

// Scan yields the captures whose keys fall inside r, in key order.
func (idx *Index) Scan(ctx context.Context, r Range) iter.Seq2[*capture.Capture, error] {
	return func(yield func(*capture.Capture, error) bool) {
		it, err := idx.db.NewIter(&pebble.IterOptions{LowerBound: r.Lower, UpperBound: r.Upper})
		if err != nil {
			yield(nil, idx.iterateError(err))
			return
		}

		defer func() {
			if err := it.Close(); err != nil {
				idx.log.Errorw("Failed to close iterator", "collection", idx.collection, "error", err)
			}
		}()

		yielded := 0
		for valid := it.First(); valid; valid = it.Next() {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			if r.Match != nil && !r.Match(it.Key()) {
				continue
			}

			c, err := capture.Decode(it.Key(), it.Value())
			if err != nil {
				if ie, ok := errors.AsIndexError(err); ok {
					ie.WithCollection(idx.collection)
				}
				yield(nil, err)
				return
			}

			if !yield(c, nil) {
				return
			}

			yielded++
			if r.Limit > 0 && yielded >= r.Limit {
				return
			}
		}

		if err := it.Error(); err != nil {
			yield(nil, idx.iterateError(err))
		}
	}
}

// NewBatch starts an empty batch. Callers must Close it, committed or not.
func (idx *Index) NewBatch() *Batch {
	return &Batch{index: idx, batch: idx.db.NewBatch()}
}

// Write stores captures as one atomic batch that is synced before returning.
// A capture whose key already exists replaces the stored one.
func (idx *Index) Write(ctx context.Context, captures []*capture.Capture) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := idx.NewBatch()
	defer batch.Close()

	for _, c := range captures {
		if err := batch.Put(c); err != nil {
			return err
		}
	}
	return batch.Commit()
}

func (idx *Index) iterateError(err error) *errors.StorageError {
	return errors.NewStorageError(err, errors.ErrStorageIterateFailed, "Failed to iterate collection store").
		WithCollection(idx.collection)
}

// PrefixUpperBound returns the smallest key greater than every key starting with
// prefix, or nil when no such key exists.
func PrefixUpperBound(prefix []byte) []byte {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)

	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] < 0xff {
			upper[i]++
			return upper[:i+1]
		}
	}
	return nil
}
