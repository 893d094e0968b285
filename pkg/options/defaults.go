package options

const (
	DefaultDataDir    string = "data"
	DefaultListenHost string = ""
	DefaultListenPort int    = 8080

	MinMemTableSize     uint64 = 4 * 1024 * 1024
	MaxMemTableSize     uint64 = 1024 * 1024 * 1024
	DefaultMemTableSize uint64 = 64 * 1024 * 1024

	DefaultTargetFileSize int64  = 64 * 1024 * 1024
	DefaultLBaseMaxBytes  int64  = 512 * 1024 * 1024
	DefaultCompression    string = "snappy"

	MinMaxLineSize     int = 4 * 1024
	DefaultMaxLineSize int = 1024 * 1024
)

var defaultOptions = Options{
	DataDir:     DefaultDataDir,
	ListenHost:  DefaultListenHost,
	ListenPort:  DefaultListenPort,
	MaxLineSize: DefaultMaxLineSize,
	StorageOptions: &StorageOptions{
		MemTableSize:   DefaultMemTableSize,
		TargetFileSize: DefaultTargetFileSize,
		LBaseMaxBytes:  DefaultLBaseMaxBytes,
		Compression:    DefaultCompression,
	},
}

// DefaultOptions returns a copy of the defaults. StorageOptions is copied too so
// option funcs never mutate the shared defaults.
func DefaultOptions() Options {
	opts := defaultOptions
	storage := *defaultOptions.StorageOptions
	opts.StorageOptions = &storage
	return opts
}
