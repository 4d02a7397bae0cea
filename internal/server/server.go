// Package server exposes a query.Runner over HTTP as POST /api/query.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"hederaquery/internal/metrics"
	"hederaquery/internal/query"
	"hederaquery/internal/upstream"
)

const (
	// QueryPath is the single proxied endpoint
	QueryPath = "/api/query"

	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// corsHeaders are sent on every /api/query response
var corsHeaders = map[string]string{
	"Access-Control-Allow-Credentials": "true",
	"Access-Control-Allow-Origin":      "*",
	"Access-Control-Allow-Methods":     "GET,OPTIONS,PATCH,DELETE,POST,PUT",
	"Access-Control-Allow-Headers":     "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version",
}

// Server routes inbound HTTP requests to a query.Runner
type Server struct {
	runner  query.Runner
	mode    string
	logger  *zap.Logger
	metrics *metrics.Metrics
	router  *mux.Router
}

// New creates a server for the given runner. mode is reported by /healthz
// and used as a metrics label.
func New(runner query.Runner, mode string, logger *zap.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		runner:  runner,
		mode:    mode,
		logger:  logger,
		metrics: m,
		router:  mux.NewRouter(),
	}

	s.router.Use(requestIDMiddleware, loggingMiddleware(logger), metricsMiddleware(m))
	// No method matcher: non-POST methods are answered by the handler itself.
	s.router.HandleFunc(QueryPath, s.handleQuery)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr), zap.String("mode", s.mode))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, query.ErrorEnvelope("Method not allowed"))
		return
	}

	var req query.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.metrics.RecordQuery("", "bad_request", s.mode, 0)
		writeJSON(w, http.StatusBadRequest, query.ErrorEnvelope("Invalid JSON body"))
		return
	}

	start := time.Now()
	env, err := s.runner.Run(r.Context(), req)
	elapsed := time.Since(start)

	if err != nil {
		status := statusFor(err)
		if status == http.StatusBadRequest {
			s.metrics.RecordQuery(categoryLabel(req.Category), "bad_request", s.mode, 0)
		} else {
			errType := upstream.TypeOf(err)
			s.metrics.RecordQuery(categoryLabel(req.Category), string(errType), s.mode, elapsed)
			s.logger.Error("query failed",
				zap.String("request_id", RequestIDFrom(r.Context())),
				zap.String("category", string(req.Category)),
				zap.String("error_type", string(errType)),
				zap.Duration("elapsed", elapsed),
				zap.Error(err))
		}
		writeJSON(w, status, query.ErrorEnvelope(err.Error()))
		return
	}

	s.metrics.RecordQuery(categoryLabel(req.Category), "ok", s.mode, elapsed)
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   s.mode,
	})
}

// categoryLabel keeps the metrics label set bounded to known categories
func categoryLabel(c query.Category) string {
	if c == "" {
		return ""
	}
	if _, err := query.ParseCategory(string(c)); err != nil {
		return "unknown"
	}
	return string(c)
}

// statusFor maps a runner error to the HTTP status returned to the caller
func statusFor(err error) int {
	var reqErr *query.RequestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
