// Package server exposes an Instance over HTTP.
//
//	GET  /                   banner, then one collection name per line
//	POST /<collection>       ingest CDX lines
//	GET  /<collection>?url=  query captures
package server

import (
	"context"
	stdErrors "errors"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iamBelugaa/cdxindex/pkg/cdxindex"
)

const (
	Banner = "cdxindex running\n"

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

type Server struct {
	instance *cdxindex.Instance
	handler  http.Handler
	log      *zap.SugaredLogger
}

func New(instance *cdxindex.Instance, log *zap.SugaredLogger) *Server {
	s := &Server{instance: instance, log: log}
	s.handler = requestLogger(log, http.HandlerFunc(s.route))
	return s
}

// Handler returns the root handler, request logging included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests. It does not close the Instance.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          zap.NewStdLog(s.log.Desugar().Named("http")),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("HTTP server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stdErrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.log.Infow("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	collection := strings.TrimPrefix(r.URL.Path, "/")

	if collection == "" {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
			s.handleBanner(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodHead)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleQuery(w, r, collection)
	case http.MethodPost:
		s.handleIngest(w, r, collection)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}
