// Package server exposes the items table over HTTP.
//
// Each route runs exactly one store call and returns its result as JSON.
// The server owns no state besides the injected store.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Makepad-fr/items/internal/logging"
	"github.com/Makepad-fr/items/internal/model"
)

// ItemStore is the storage the handlers need.
type ItemStore interface {
	List(ctx context.Context) ([]model.Item, error)
	Get(ctx context.Context, id int64) (model.Item, error)
	Create(ctx context.Context, name, description string) (model.Item, error)
	Update(ctx context.Context, id int64, name, description string) (model.Item, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// Options tune the HTTP surface.
type Options struct {
	// CORSOrigins lists allowed origins. Empty or "*" allows all.
	CORSOrigins []string

	// ExposeErrors returns raw storage errors to clients instead of a
	// generic message.
	ExposeErrors bool

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// MaxBodyBytes caps request bodies. Zero means 1 MiB.
	MaxBodyBytes int64
}

// Server serves the items API.
type Server struct {
	store   ItemStore
	logger  *slog.Logger
	opts    Options
	handler http.Handler
}

// New creates a server on top of the given store.
func New(store ItemStore, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{store: store, logger: logger, opts: opts}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.handler = chain(mux,
		recoverer(logger),
		requestID,
		accessLog(logger),
		cors(opts.CORSOrigins),
	)
	return s
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server running", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
