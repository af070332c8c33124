// Package api provides the HTTP JSON API for stockdash.
//
// It exposes the aggregation pipeline (stock dashboard, competitor
// benchmarks, drop table, news, sentiment, congressional trades and drop
// headlines) behind an optional passphrase gate.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/seenimoa/stockdash/internal/config"
	"github.com/seenimoa/stockdash/internal/pipeline"
	"github.com/seenimoa/stockdash/internal/provider"
	"github.com/seenimoa/stockdash/pkg/utils"
)

// Version is reported by /health. Set by the CLI at start-up.
var Version = "dev"

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	reg    *provider.Registry
	pipe   *pipeline.Pipeline
	logger *zap.Logger
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, reg *provider.Registry, pipe *pipeline.Pipeline, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &Server{
		cfg:    cfg,
		reg:    reg,
		pipe:   pipe,
		logger: logger,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully on
// SIGINT or SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.requestTimeout() + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	select {
	case err := <-errCh:
		return err
	case <-done:
	}
	s.logger.Info("shutting down api")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.API.RequestTimeoutSec <= 0 {
		return time.Minute
	}
	return time.Duration(s.cfg.API.RequestTimeoutSec) * time.Second
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", PassphraseHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(AccessGate(s.cfg.Access, s.logger))

			// Streams manage their own lifetime.
			r.Get("/ws/drops", s.handleDropStream)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(s.requestTimeout()))

				r.Get("/stock/{symbol}", s.handleStock)
				r.Get("/peers/{symbol}", s.handlePeers)
				r.Get("/drops", s.handleDrops)
				r.Get("/news/{symbol}", s.handleNews)
				r.Get("/sentiment/{symbol}", s.handleSentiment)
				r.Get("/trades/{symbol}", s.handleTrades)
				r.Get("/headlines/{symbol}", s.handleHeadlines)

				r.Get("/providers", s.handleProviders)
				r.Get("/config", s.handleGetConfig)
				r.Get("/config/keys", s.handleGetConfigKeys)
			})
		})
	})

	return r
}

// ============================================================
// Response envelope
// ============================================================

// APIResponse is the standard JSON envelope. NoData marks a successful
// request for which the vendors had nothing to report.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	NoData  bool        `json:"no_data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data interface{}, noData bool) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data, NoData: noData})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// writeFailure maps a pipeline error onto the envelope. NoDataFound is not
// a failure: it is answered 200 with no_data set.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusOK {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, NoData: true, Error: err.Error()})
		return
	}
	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	writeError(w, status, err.Error())
}

// StatusFor returns the HTTP status for a pipeline error.
func StatusFor(err error) int {
	var (
		missing     *provider.ErrMissingParam
		notFound    *provider.ErrProviderNotFound
		unsupported *provider.ErrModelNotSupported
	)
	switch {
	case err == nil, errors.Is(err, provider.ErrNoDataFound):
		return http.StatusOK
	case utils.IsValidationError(err), errors.As(err, &missing):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrSourceRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, provider.ErrSourceMalformed):
		return http.StatusBadGateway
	case errors.Is(err, provider.ErrSourceUnavailable),
		errors.As(err, &notFound), errors.As(err, &unsupported):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
