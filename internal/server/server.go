// Package server wires the HTTP layer: routing, request orchestration for
// the analyze and barcode endpoints, error envelopes, and metrics.
package server

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/amr05008/glutenornot.com/internal/config"
	"github.com/amr05008/glutenornot.com/internal/lookup"
	"github.com/amr05008/glutenornot.com/internal/ocr"
	"github.com/amr05008/glutenornot.com/internal/provider"
	"github.com/amr05008/glutenornot.com/internal/ratelimit"
)

// Server holds the wired dependencies for all HTTP handlers.
type Server struct {
	cfg     *config.Config
	logger  zerolog.Logger
	ocr     ocr.Engine
	llm     provider.Provider
	lookup  *lookup.Waterfall
	limiter *ratelimit.Limiter
}

// New builds a server from already-constructed dependencies. Wiring from
// config happens in main; handlers only see interfaces.
func New(cfg *config.Config, logger zerolog.Logger, engine ocr.Engine, llm provider.Provider, waterfall *lookup.Waterfall, limiter *ratelimit.Limiter) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		ocr:     engine,
		llm:     llm,
		lookup:  waterfall,
		limiter: limiter,
	}
}

// Router assembles the chi router with middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Post("/api/analyze", s.handleAnalyze)
	r.Post("/api/barcode", s.handleBarcode)
	r.Get("/api/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Start runs the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("glutenornot api listening")
	return http.ListenAndServe(addr, s.Router())
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// clientIdentifier is the admission-control key for a request. RealIP
// middleware has already folded X-Forwarded-For / X-Real-IP into
// RemoteAddr; strip the port when one is present.
func clientIdentifier(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
