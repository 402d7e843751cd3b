// Package api serves the model registry over HTTP.
//
// Routes mirror the registry coordinator one to one. Every error body is a
// presentation.ErrorDTO; the status code is derived from the domain error
// type so clients can branch on the code field without parsing messages.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	appreg "github.com/fkid009/MLflow-study/internal/application/registry"
	"github.com/fkid009/MLflow-study/internal/config"
	"github.com/fkid009/MLflow-study/internal/log"
)

const defaultShutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Config config.APIConfig

	// Tracer opens one server span per request. Nil disables HTTP spans.
	Tracer trace.Tracer

	// CORSOrigins enables CORS for the listed origins. Empty disables CORS.
	CORSOrigins []string

	// ArchiveExisting is applied to stage requests that omit archive_existing.
	ArchiveExisting bool
}

// Server is the registry HTTP daemon.
type Server struct {
	opts       Options
	handler    http.Handler
	httpServer *http.Server
}

// NewServer builds the router and the underlying http.Server.
func NewServer(coord *appreg.Coordinator, opts Options) *Server {
	s := &Server{opts: opts}
	s.handler = s.routes(&handlers{coord: coord, archiveDefault: opts.ArchiveExisting})
	s.httpServer = &http.Server{
		Addr:              opts.Config.Addr,
		Handler:           s.handler,
		ReadTimeout:       opts.Config.ReadTimeout,
		ReadHeaderTimeout: opts.Config.ReadTimeout,
		WriteTimeout:      opts.Config.WriteTimeout,
	}
	return s
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Config.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(log.CatAPI, "API listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		timeout := s.opts.Config.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		log.Info(log.CatAPI, "API shutting down", "timeout", timeout)
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	})

	return g.Wait()
}
