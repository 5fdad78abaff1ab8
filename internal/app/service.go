// Package service composes the Breeze client, the HTTP facade and the HTTP
// server, and owns their lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/breezeapi/internal/adapters/http/api"
	"github.com/okian/breezeapi/internal/adapters/http/swagger"
	"github.com/okian/breezeapi/internal/breeze"
	"github.com/okian/breezeapi/internal/config"
	"github.com/okian/breezeapi/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	// Writes wait on Breeze, so they get the upstream timeout plus slack.
	writeSlack = 5 * time.Second
)

// ErrNotStarted is returned by operations that need a running service.
var ErrNotStarted = errors.New("service not started")

// Service owns the HTTP server in front of a single Breeze client.
type Service struct {
	mu sync.RWMutex

	cfg    *config.Config
	client breeze.Client
	logger logger.Logger

	handler  http.Handler
	server   *http.Server
	listener net.Listener
	serveErr chan error

	started bool
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfig sets the process configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithClient replaces the Breeze client built from configuration.
func WithClient(c breeze.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.client = c
		}
	}
}

// New constructs a Service. Defaults come from config.New.
func New(opts ...Option) *Service {
	s := &Service{cfg: config.New(context.Background())}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the routed handler without listening. It is built once.
func (s *Service) Handler(ctx context.Context) (http.Handler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildLocked(ctx)
}

func (s *Service) buildLocked(ctx context.Context) (http.Handler, error) {
	if s.handler != nil {
		return s.handler, nil
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	if s.client == nil {
		if err := s.cfg.Validate(); err != nil {
			return nil, err
		}
		c, err := breeze.NewHTTPClient(breeze.Options{
			BaseURL: s.cfg.URL,
			APIKey:  s.cfg.APIKey,
			Timeout: s.cfg.UpstreamTimeout,
			Logger:  s.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("building breeze client: %w", err)
		}
		s.client = c
	}

	server := api.NewServer(s.client, s.logger)
	s.handler = api.NewRouter(ctx, server, api.RouterOptions{
		AllowedOrigins: s.cfg.AllowedOrigins,
		Logger:         s.logger,
		Mounts:         []func(chi.Router){swagger.Register},
	})
	return s.handler, nil
}

// Start binds the listen address and serves in the background. Bind and
// configuration errors are returned before anything is served.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	h, err := s.buildLocked(ctx)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:           h,
		ReadTimeout:       readTimeout,
		WriteTimeout:      s.cfg.UpstreamTimeout + writeSlack,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.serveErr = make(chan error, 1)

	go func(srv *http.Server, errCh chan<- error) {
		s.logger.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, "HTTP server failed", logger.Error(err))
			errCh <- err
		}
		close(errCh)
	}(s.server, s.serveErr)

	s.started = true
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Service) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Done yields the serve error, if any, and is closed when serving stops.
func (s *Service) Done() <-chan error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serveErr
}

// Stop shuts the server down gracefully, bounded by the configured
// shutdown timeout.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}

	s.logger.Info(ctx, "shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)
	s.started = false
	s.listener = nil
	if err != nil {
		s.logger.Error(ctx, "server shutdown failed", logger.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info(ctx, "server stopped")
	return nil
}

// GetStats returns service state for diagnostics.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := map[string]interface{}{
		"started":  s.started,
		"upstream": s.cfg.URL,
	}
	if s.listener != nil {
		stats["addr"] = s.listener.Addr().String()
	}
	return stats
}
