package index

import (
	"github.com/cockroachdb/pebble"

	"github.com/iamBelugaa/cdxindex/internal/capture"
	"github.com/iamBelugaa/cdxindex/pkg/errors"
)

// Put stages a capture. Nothing is visible to readers until Commit.
func (b *Batch) Put(c *capture.Capture) error {
	if err := b.batch.Set(c.EncodeKey(), c.EncodeValue(), nil); err != nil {
		return errors.NewStorageError(err, errors.ErrRecordSerialization, "Failed to stage capture").
			WithCollection(b.index.collection).
			WithDetail("urlkey", c.URLKey).
			WithDetail("timestamp", c.Timestamp)
	}

	b.count++
	return nil
}

// Len returns the number of staged captures.
func (b *Batch) Len() int {
	return b.count
}

// Commit applies every staged capture atomically and waits for the write to
// reach stable storage.
func (b *Batch) Commit() error {
	b.index.log.Debugw("Committing batch", "collection", b.index.collection, "captures", b.count)

	if err := b.batch.Commit(pebble.Sync); err != nil {
		return errors.NewStorageError(err, errors.ErrStorageCommitFailed, "Failed to commit batch").
			WithCollection(b.index.collection).
			WithDetail("captures", b.count)
	}

	b.index.log.Infow("Batch committed", "collection", b.index.collection, "captures", b.count)
	return nil
}

// Close releases the batch. Closing an uncommitted batch discards it.
func (b *Batch) Close() error {
	return b.batch.Close()
}
