// Package server provides the HTTP API over the response parsing and
// artifact lifecycle engine.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jmorrow/designdeck/internal/approval"
	"github.com/jmorrow/designdeck/internal/db"
	"github.com/jmorrow/designdeck/internal/metrics"
	"github.com/jmorrow/designdeck/internal/parsing"
	"github.com/jmorrow/designdeck/internal/preview"
	"github.com/jmorrow/designdeck/internal/reconcile"
	"github.com/jmorrow/designdeck/internal/session"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	store      db.Store
	parser     *parsing.Parser
	reconciler *reconcile.Reconciler
	approver   *approval.Approver
	previews   *preview.Builder
	sessions   *session.Tracker
	identity   *Identity
	metrics    *metrics.Collector
	logger     *zap.Logger
}

// Config holds server configuration
type Config struct {
	ListenAddr      string
	JWTSecret       string
	DefaultApprover string
}

// New creates a new server instance around an already-connected store. A nil
// logger discards output; a nil collector records to a private registry.
func New(cfg Config, store db.Store, collector *metrics.Collector, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.NewCollector("", prometheus.NewRegistry(), logger)
	}

	parser := parsing.NewParser(logger)
	s := &Server{
		store:      store,
		parser:     parser,
		reconciler: reconcile.NewReconciler(store, logger),
		approver:   approval.NewApprover(store, logger),
		previews:   preview.NewBuilder(parser, logger),
		sessions:   session.NewTracker(parser, store, logger),
		identity:   NewIdentity(cfg.JWTSecret, cfg.DefaultApprover),
		metrics:    collector,
		logger:     logger.With(zap.String("component", "server")),
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /projects/{project_id}/responses", s.handleTurn)
	mux.HandleFunc("POST /projects/{project_id}/responses/stream", s.handleTurnStream)
	mux.HandleFunc("POST /projects/{project_id}/preview", s.handlePreview)
	mux.HandleFunc("GET /projects/{project_id}/artifacts", s.handleListArtifacts)
	mux.HandleFunc("GET /projects/{project_id}/state", s.handleGetState)
	mux.HandleFunc("GET /artifacts/{artifact_id}/versions", s.handleListVersions)
	mux.HandleFunc("POST /artifacts/{artifact_id}/approve", s.handleApprove)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for streaming turns
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests and blocks until shutdown
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	s.logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.store.Close()
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Approver")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging logs each request and feeds the HTTP metrics
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		duration := time.Since(start)

		s.logger.Info("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", duration))
		s.metrics.RecordHTTPRequest(r.Method, routePattern(r), rec.status, duration)
	})
}

// statusRecorder captures the response status for logging and metrics. Flush
// is forwarded so SSE responses keep streaming through the wrapper.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// routePattern returns the matched route for metric labels, falling back to
// the raw path for requests that never went through the mux.
func routePattern(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return r.URL.Path
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "store unreachable: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
