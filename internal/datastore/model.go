package datastore

import (
	stdErrors "errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/iamBelugaa/cdxindex/pkg/options"
)

var (
	ErrDataStoreClosed = stdErrors.New("operation failed: cannot access closed data store")
)

// DataStore owns every open collection store. Lookups of an open collection
// go through handles without locking; opening or creating one holds openMu so
// a collection directory is never opened twice.
type DataStore struct {
	closed  atomic.Bool
	dataDir string
	openMu  sync.Mutex
	handles sync.Map // collection name -> *pebble.DB
	options *options.Options
	log     *zap.SugaredLogger
}
