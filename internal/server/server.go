// Package server exposes the analysis service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/harrison/verdict/internal/analyzer"
	"github.com/harrison/verdict/internal/config"
	"github.com/harrison/verdict/internal/logger"
	"github.com/harrison/verdict/internal/metrics"
)

// Server hosts the analysis endpoints.
type Server struct {
	cfg     config.ServerConfig
	svc     *analyzer.Service
	logger  logger.Logger
	metrics *metrics.Collector
	http    *http.Server
}

// New constructs a Server. A nil collector disables /metrics and request
// instrumentation.
func New(cfg config.ServerConfig, svc *analyzer.Service, log logger.Logger, m *metrics.Collector) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Server{
		cfg:     cfg,
		svc:     svc,
		logger:  log,
		metrics: m,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed and instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /patterns", s.handlePatterns)
	mux.HandleFunc("GET /similar", s.handleSimilar)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	if s.metrics == nil {
		return mux
	}
	mux.Handle("GET /metrics", s.metrics.Handler())
	return s.metrics.InstrumentHandler(mux)
}

// Start begins serving HTTP traffic on the configured address.
func (s *Server) Start() error {
	s.logger.Infof("listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Serve serves HTTP traffic on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Infof("listening on %s", l.Addr())
	if err := s.http.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http serve: %w", err)
	}
	return nil
}

// Shutdown gracefully terminates the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}

	s.logger.Infof("shutting down server")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
