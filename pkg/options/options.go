// Package options provides data structures and functions for configuring the cdxindex server.
package options

import (
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"
)

// Defines how each collection's ordered store is tuned.
type StorageOptions struct {
	// Size of the in-memory write buffer before it is flushed to a table file.
	//
	//  - Default: 64MB
	//  - Maximum: 1GB
	//  - Minimum: 4MB
	MemTableSize uint64 `json:"memTableSize"`

	// Target size of table files in the first level; deeper levels double it.
	//
	// Default: 64MB
	TargetFileSize int64 `json:"targetFileSize"`

	// Maximum size of the base level before compactions move data down.
	//
	// Default: 512MB
	LBaseMaxBytes int64 `json:"lBaseMaxBytes"`

	// Block compression: "snappy", "zstd" or "none".
	//
	// Default: "snappy"
	Compression string `json:"compression"`
}

// Defines the configuration parameters for the cdxindex server.
type Options struct {
	// Specifies the base path under which every collection gets its own directory.
	//
	// Default: "data"
	DataDir string `json:"dataDir"`

	// Address to bind to. Empty binds all interfaces.
	ListenHost string `json:"listenHost"`

	// TCP port to listen on.
	//
	// Default: 8080
	ListenPort int `json:"listenPort"`

	// Serve on the listening socket passed in as stdin (systemd, inetd).
	InheritSocket bool `json:"inheritSocket"`

	// Log every ingested line and every request at debug level.
	Verbose bool `json:"verbose"`

	// Longest ingest line accepted, in bytes.
	//
	// Default: 1MB
	MaxLineSize int `json:"maxLineSize"`

	// Configures the per-collection ordered store.
	StorageOptions *StorageOptions `json:"storageOptions"`
}

type OptionFunc func(*Options)

// Sets the base data directory.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// Sets the bind address.
func WithListenHost(host string) OptionFunc {
	return func(o *Options) {
		o.ListenHost = strings.TrimSpace(host)
	}
}

// Sets the listening port. Out of range values are ignored.
func WithListenPort(port int) OptionFunc {
	return func(o *Options) {
		if port > 0 && port <= math.MaxUint16 {
			o.ListenPort = port
		}
	}
}

func WithInheritSocket(inherit bool) OptionFunc {
	return func(o *Options) {
		o.InheritSocket = inherit
	}
}

func WithVerbose(verbose bool) OptionFunc {
	return func(o *Options) {
		o.Verbose = verbose
	}
}

// Sets the longest accepted ingest line.
func WithMaxLineSize(size int) OptionFunc {
	return func(o *Options) {
		if size >= MinMaxLineSize {
			o.MaxLineSize = size
		}
	}
}

// Sets the memtable size of each collection store.
func WithMemTableSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size >= MinMemTableSize && size <= MaxMemTableSize {
			o.StorageOptions.MemTableSize = size
		}
	}
}

func WithTargetFileSize(size int64) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.StorageOptions.TargetFileSize = size
		}
	}
}

func WithLBaseMaxBytes(size int64) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.StorageOptions.LBaseMaxBytes = size
		}
	}
}

// Sets the block compression. Unknown names are ignored.
func WithCompression(name string) OptionFunc {
	return func(o *Options) {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "snappy", "zstd", "none":
			o.StorageOptions.Compression = name
		}
	}
}

// ListenAddr joins host and port into a dialable address.
func (o Options) ListenAddr() string {
	return net.JoinHostPort(o.ListenHost, strconv.Itoa(o.ListenPort))
}

// FormatBytes converts byte count to human-readable format for log and error messages.
func FormatBytes(bytes uint64) string {
	const unit = 1024
	var units = []string{"B", "KB", "MB", "GB", "TB"}

	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	exp := 0
	value := float64(bytes)

	for value >= unit && exp < len(units)-1 {
		value /= unit
		exp++
	}

	if math.Abs(value-math.Round(value)) < 0.01 {
		return fmt.Sprintf("%.0f %s", math.Round(value), units[exp])
	}
	return fmt.Sprintf("%.2f %s", value, units[exp])
}
