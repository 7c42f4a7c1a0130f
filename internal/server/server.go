// internal/server/server.go

// Package server exposes the scoring engine over HTTP: the flat REST
// endpoint, the agent envelope endpoint and the operational endpoints.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lovefi-matcher/internal/common/config"
	"lovefi-matcher/internal/common/logger"
	"lovefi-matcher/internal/common/observability"
	"lovefi-matcher/internal/compatibility"
)

const maxBodyBytes = 1 << 20

// Checker is a dependency consulted by /ready.
type Checker interface {
	Name() string
	Ping(ctx context.Context) error
}

type Server struct {
	cfg         config.ServerConfig
	restMode    compatibility.Mode
	messageMode compatibility.Mode
	logger      logger.Logger
	obs         *observability.Observability
	checkers    []Checker
	handler     http.Handler
	now         func() time.Time
}

type Option func(*Server)

func WithObservability(obs *observability.Observability) Option {
	return func(s *Server) { s.obs = obs }
}

// WithCheckers adds readiness dependencies. nil entries are skipped.
func WithCheckers(checkers ...Checker) Option {
	return func(s *Server) {
		for _, c := range checkers {
			if c != nil {
				s.checkers = append(s.checkers, c)
			}
		}
	}
}

// WithClock overrides time.Now, used for envelope expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(cfg config.ServerConfig, scoring config.ScoringConfig, log logger.Logger, opts ...Option) (*Server, error) {
	restMode, err := compatibility.ParseMode(scoring.RESTMode)
	if err != nil {
		return nil, fmt.Errorf("rest mode: %w", err)
	}
	messageMode, err := compatibility.ParseMode(scoring.DefaultMode)
	if err != nil {
		return nil, fmt.Errorf("default mode: %w", err)
	}

	s := &Server{
		cfg:         cfg,
		restMode:    restMode,
		messageMode: messageMode,
		logger:      log.WithFields(map[string]interface{}{"component": "http"}),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.AgentName == "" {
		s.cfg.AgentName = "lovefi-matcher"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/submit", s.handleSubmit)
	mux.HandleFunc("/api/submit", s.handleSubmit)
	mux.HandleFunc("/match/calculate", s.handleMatchCalculate)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	s.handler = s.withLogging(s.withCORS(mux))
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.handler,
		ReadTimeout:  config.GetDuration(s.cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{"address": s.cfg.Address})
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(s.cfg.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.logger.Info("http server stopped", nil)
	return nil
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && allowed == origin {
			return origin
		}
	}
	if len(s.cfg.AllowedOrigins) == 0 {
		return "*"
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			return
		}
		s.logger.Info("request handled", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"durationMs": time.Since(start).Milliseconds(),
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
