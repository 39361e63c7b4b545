package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cyderes/trending-topics-service/internal/config"
	"github.com/cyderes/trending-topics-service/internal/ingestion"
	"github.com/cyderes/trending-topics-service/internal/models"
	"github.com/cyderes/trending-topics-service/internal/query"
	"github.com/cyderes/trending-topics-service/internal/research"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Researcher produces trend candidates for a brand
type Researcher interface {
	Research(ctx context.Context, req research.Request) (research.Outcome, error)
}

// Ingestor persists batches of candidates
type Ingestor interface {
	BulkCreate(ctx context.Context, candidates []models.CandidateTrend) (*ingestion.BulkResult, error)
}

// Querier reads stored trends
type Querier interface {
	List(ctx context.Context, params query.Params) (*query.Page, error)
	Get(ctx context.Context, id string) (*models.Trend, error)
}

// VisibilityChanger hides and restores trends
type VisibilityChanger interface {
	SetHidden(ctx context.Context, id string, hidden bool) (*models.Trend, error)
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the HTTP API is built on
type Deps struct {
	Researcher Researcher
	Ingestor   Ingestor
	Querier    Querier
	Visibility VisibilityChanger
	Store      Pinger
}

// Server handles HTTP requests
type Server struct {
	config config.ServerConfig
	deps   Deps
	logger *slog.Logger
	server *http.Server
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		config: cfg,
		deps:   deps,
		logger: logger.With("component", "server"),
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/trends", func(r chi.Router) {
		r.Post("/research", s.handleResearch)
		r.Post("/bulk", s.handleBulk)
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleGet)
		r.Patch("/{id}/hide", s.handleSetHidden)
	})

	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
