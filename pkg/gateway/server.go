package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sluice-hq/sluice/pkg/config"
	"sluice-hq/sluice/pkg/limits"
	"sluice-hq/sluice/pkg/telemetry/logging"
	"sluice-hq/sluice/pkg/telemetry/metrics"
)

// Server is the HTTP gateway in front of the rate limiter.
type Server struct {
	config       *config.Config
	manager      *limits.Manager
	registry     *prometheus.Registry
	httpMetrics  *metrics.HTTPMetrics
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a gateway server. registry may be nil when metrics are
// disabled.
func NewServer(cfg *config.Config, manager *limits.Manager, registry *prometheus.Registry) *Server {
	s := &Server{
		config:       cfg,
		manager:      manager,
		registry:     registry,
		shutdownChan: make(chan struct{}),
	}
	if registry != nil && !cfg.Telemetry.Metrics.Disabled {
		s.httpMetrics = metrics.NewHTTPMetrics(registry)
	}
	return s
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.Server.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server",
			"address", s.config.Server.ListenAddress,
			"profile", s.config.Limits.DefaultProfile,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server, bounded by the configured
// shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// Stop requests shutdown from another goroutine.
func (s *Server) Stop() {
	select {
	case s.shutdownChan <- struct{}{}:
	default:
	}
}

// Handler builds the complete route tree with the middleware chain applied.
// Health and metrics are registered outside the rate limited chain.
func (s *Server) Handler() http.Handler {
	protected := http.NewServeMux()
	protected.HandleFunc("/v1/status", s.handleStatus)

	var limited http.Handler = protected
	limited = RateLimitMiddleware(s.manager, RateLimitOptions{
		KeyHeader: s.config.Limits.KeyHeader,
		Profile:   s.config.Limits.DefaultProfile,
	})(limited)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.registry != nil && !s.config.Telemetry.Metrics.Disabled {
		mux.Handle(s.config.Telemetry.Metrics.Path, promhttp.HandlerFor(
			s.registry,
			promhttp.HandlerOpts{},
		))
	}
	mux.Handle("/", limited)

	var handler http.Handler = mux
	if s.httpMetrics != nil {
		handler = s.httpMetrics.Middleware(handler)
	}
	handler = LoggingMiddleware(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(handler)

	return handler
}

// handleHealth answers liveness probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// statusResponse is the JSON body of the status endpoint.
type statusResponse struct {
	Profile   string `json:"profile"`
	Key       string `json:"key"`
	Limit     int64  `json:"limit"`
	Remaining int64  `json:"remaining"`
}

// handleStatus reports the caller's bucket state. The request passed the
// rate limit middleware to get here, so the lookup cannot miss.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	key := logging.GetClientKey(r.Context())
	status, err := s.manager.Status(s.config.Limits.DefaultProfile, key)
	if err != nil {
		writeError(w, http.StatusInternalServerError,
			"internal_error", "Failed to read bucket status.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(statusResponse{
		Profile:   status.Profile,
		Key:       key,
		Limit:     status.Limit,
		Remaining: status.Remaining,
	})
}
