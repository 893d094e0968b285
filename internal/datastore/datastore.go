// Package datastore manages the set of open collections.
package datastore

import (
	"context"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/pebble"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iamBelugaa/cdxindex/internal/index"
	"github.com/iamBelugaa/cdxindex/internal/storage"
	"github.com/iamBelugaa/cdxindex/pkg/errors"
	"github.com/iamBelugaa/cdxindex/pkg/filesys"
	"github.com/iamBelugaa/cdxindex/pkg/options"
)

// New creates the data directory if needed. Collections are opened lazily.
func New(ctx context.Context, log *zap.SugaredLogger, options *options.Options) (*DataStore, error) {
	log.Infow("Initializing data store", "dataDir", options.DataDir)

	if err := filesys.CreateDir(options.DataDir, 0755, true); err != nil {
		return nil, errors.NewStorageError(
			err, errors.ErrIOOpenFailed, "Failed to create data directory",
		).
			WithPath(options.DataDir)
	}

	return &DataStore{
		log:     log,
		options: options,
		dataDir: options.DataDir,
	}, nil
}

// GetIndex returns a view over the named collection. An open collection is
// returned without I/O. A collection with a directory on disk is opened. A
// collection with no directory is created only when createAllowed is set;
// otherwise GetIndex reports found == false with a nil error.
func (d *DataStore) GetIndex(ctx context.Context, collection string, createAllowed bool) (*index.Index, bool, error) {
	if d.closed.Load() {
		return nil, false, ErrDataStoreClosed
	}

	if err := ValidateCollectionName(collection); err != nil {
		return nil, false, err
	}

	if db, ok := d.handles.Load(collection); ok {
		return index.New(collection, db.(*pebble.DB), d.log), true, nil
	}

	db, err := d.open(ctx, collection, createAllowed)
	if err != nil {
		return nil, false, err
	}

	if db == nil {
		return nil, false, nil
	}

	return index.New(collection, db, d.log), true, nil
}

// open is the serialized slow path of GetIndex.
func (d *DataStore) open(ctx context.Context, collection string, createAllowed bool) (*pebble.DB, error) {
	d.openMu.Lock()
	defer d.openMu.Unlock()

	if d.closed.Load() {
		return nil, ErrDataStoreClosed
	}

	if db, ok := d.handles.Load(collection); ok {
		return db.(*pebble.DB), nil
	}

	path := filepath.Join(d.dataDir, collection)
	if !createAllowed && !filesys.IsDir(path) {
		d.log.Debugw("Collection not found", "collection", collection, "path", path)
		return nil, nil
	}

	db, err := storage.Open(ctx, d.log, collection, path, d.options.StorageOptions)
	if err != nil {
		return nil, err
	}

	d.handles.Store(collection, db)
	d.log.Infow("Collection opened", "collection", collection, "path", path)
	return db, nil
}

// Collections lists the collections present on disk, open or not, sorted by name.
func (d *DataStore) Collections() ([]string, error) {
	dirs, err := filesys.ListDirs(d.dataDir)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrIOReadFailed, "Failed to list collections").
			WithPath(d.dataDir)
	}

	names := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if ValidateCollectionName(dir) == nil {
			names = append(names, dir)
		}
	}

	slices.Sort(names)
	return names, nil
}

// Close closes every open collection. It must be called once, at shutdown.
func (d *DataStore) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return ErrDataStoreClosed
	}

	d.openMu.Lock()
	defer d.openMu.Unlock()

	var closeErr error
	closedCount := 0

	d.handles.Range(func(key, value any) bool {
		collection := key.(string)
		if err := value.(*pebble.DB).Close(); err != nil {
			d.log.Errorw("Failed to close collection", "collection", collection, "error", err)
			closeErr = multierr.Append(closeErr, errors.NewStorageError(
				err, errors.ErrIOCloseFailed, "Failed to close collection store",
			).
				WithCollection(collection))
		}

		d.handles.Delete(key)
		closedCount++
		return true
	})

	if closeErr != nil {
		return closeErr
	}

	d.log.Infow("Data store closed successfully", "collectionsClosed", closedCount)
	return nil
}
