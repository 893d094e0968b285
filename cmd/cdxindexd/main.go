package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iamBelugaa/cdxindex/internal/server"
	"github.com/iamBelugaa/cdxindex/pkg/cdxindex"
	"github.com/iamBelugaa/cdxindex/pkg/logger"
	"github.com/iamBelugaa/cdxindex/pkg/options"
)

const service = "cdxindexd"

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	bind := flag.String("b", envString("CDXINDEX_BIND", options.DefaultListenHost), "address to bind to (all interfaces when empty)")
	port := flag.Int("p", envInt("CDXINDEX_PORT", options.DefaultListenPort), "port to listen on")
	dataDir := flag.String("d", envString("CDXINDEX_DATA_DIR", options.DefaultDataDir), "directory holding one store per collection")
	inherit := flag.Bool("i", envBool("CDXINDEX_INHERIT_SOCKET", false), "serve on the listening socket passed as stdin")
	verbose := flag.Bool("v", envBool("CDXINDEX_VERBOSE", false), "enable debug logging")
	memTable := flag.Uint64("memtable-size", uint64(envInt("CDXINDEX_MEMTABLE_SIZE", int(options.DefaultMemTableSize))), "memtable size in bytes of each collection store")
	targetFile := flag.Int64("target-file-size", int64(envInt("CDXINDEX_TARGET_FILE_SIZE", int(options.DefaultTargetFileSize))), "target sstable size in bytes")
	lbaseMax := flag.Int64("lbase-max-bytes", int64(envInt("CDXINDEX_LBASE_MAX_BYTES", int(options.DefaultLBaseMaxBytes))), "maximum size in bytes of the base level")
	compression := flag.String("compression", envString("CDXINDEX_COMPRESSION", options.DefaultCompression), "block compression: snappy, zstd or none")
	maxLine := flag.Int("max-line-size", envInt("CDXINDEX_MAX_LINE_SIZE", options.DefaultMaxLineSize), "longest accepted ingest line in bytes")
	flag.Parse()

	log := logger.New(service, *verbose)
	defer func() { _ = log.Sync() }()

	if err := run(log, []options.OptionFunc{
		options.WithListenHost(*bind),
		options.WithListenPort(*port),
		options.WithDataDir(*dataDir),
		options.WithInheritSocket(*inherit),
		options.WithVerbose(*verbose),
		options.WithMemTableSize(*memTable),
		options.WithTargetFileSize(*targetFile),
		options.WithLBaseMaxBytes(*lbaseMax),
		options.WithCompression(*compression),
		options.WithMaxLineSize(*maxLine),
	}); err != nil {
		log.Errorw("Server stopped with error", "error", err)
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger, opts []options.OptionFunc) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inst, err := cdxindex.NewInstance(ctx, log, opts...)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := inst.Close(); closeErr != nil {
			log.Errorw("Failed to close collections", "error", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}()

	cfg := inst.Options()
	ln, err := listen(&cfg)
	if err != nil {
		return err
	}

	return server.New(inst, log).Serve(ctx, ln)
}

func listen(cfg *options.Options) (net.Listener, error) {
	if cfg.InheritSocket {
		ln, err := net.FileListener(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to inherit listening socket from stdin: %w", err)
		}
		return ln, nil
	}

	ln, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.ListenAddr(), err)
	}
	return ln, nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
