package index

import (
	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"
)

// Index is a read/write view over one collection's open store. It does not own
// the store handle and never closes it; values are cheap and safe to share.
type Index struct {
	collection string
	db         *pebble.DB
	log        *zap.SugaredLogger
}

// Range describes a bounded forward scan over stored keys.
type Range struct {
	Lower []byte // Lower is the inclusive lower bound.
	Upper []byte // Upper is the exclusive upper bound; nil scans to the end of the store.

	// Match, when set, filters keys inside the bounds. Returning false skips the key.
	Match func(key []byte) bool

	// Limit caps the number of yielded captures. Zero means no limit.
	Limit int
}

// Batch collects captures and applies them as one atomic, synchronous write.
type Batch struct {
	index *Index
	batch *pebble.Batch
	count int
}
