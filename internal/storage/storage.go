// Package storage opens the ordered store that backs one collection.
package storage

import (
	"context"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"github.com/iamBelugaa/cdxindex/pkg/errors"
	"github.com/iamBelugaa/cdxindex/pkg/filesys"
	"github.com/iamBelugaa/cdxindex/pkg/options"
)

// Open opens the store in dirPath, creating the directory when it is missing.
// Whether creation is allowed is the caller's decision.
func Open(ctx context.Context, log *zap.SugaredLogger, collection, dirPath string, opts *options.StorageOptions) (*pebble.DB, error) {
	log.Infow(
		"Opening collection store",
		"collection", collection,
		"path", dirPath,
		"memTableSize", options.FormatBytes(opts.MemTableSize),
		"targetFileSize", options.FormatBytes(uint64(opts.TargetFileSize)),
		"compression", opts.Compression,
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := filesys.CreateDir(dirPath, 0755, true); err != nil {
		return nil, errors.NewStorageError(
			err, errors.ErrIOOpenFailed, "Failed to create collection directory",
		).
			WithCollection(collection).
			WithPath(dirPath)
	}

	db, err := pebble.Open(dirPath, pebbleOptions(log, opts))
	if err != nil {
		return nil, errors.NewStorageError(
			err, errors.ErrStorageOpenFailed, "Failed to open collection store",
		).
			WithCollection(collection).
			WithPath(dirPath)
	}

	log.Infow("Collection store opened successfully", "collection", collection, "path", dirPath)
	return db, nil
}

// pebbleOptions translates StorageOptions. The target file size doubles per level.
func pebbleOptions(log *zap.SugaredLogger, opts *options.StorageOptions) *pebble.Options {
	compression := compressionFor(opts.Compression)

	levels := make([]pebble.LevelOptions, 7)
	targetFileSize := opts.TargetFileSize
	for i := range levels {
		levels[i] = pebble.LevelOptions{
			Compression:    compression,
			TargetFileSize: targetFileSize,
		}
		targetFileSize *= 2
	}

	pebbleOpts := &pebble.Options{
		MemTableSize:  opts.MemTableSize,
		LBaseMaxBytes: opts.LBaseMaxBytes,
		Levels:        levels,
		Logger:        log.Named("pebble"),
	}
	return pebbleOpts.EnsureDefaults()
}

func compressionFor(name string) pebble.Compression {
	switch name {
	case "zstd":
		return pebble.ZstdCompression
	case "none":
		return pebble.NoCompression
	default:
		return pebble.SnappyCompression
	}
}
