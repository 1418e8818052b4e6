package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/eternals/internal/config"
	"github.com/dgallion1/eternals/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server is the HTTP API server for the dashboard.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/parse", s.handleParse)
		r.Post("/api/parse/batch", s.handleBatchParse)
		r.Get("/api/parse/{jobID}/status", s.handleParseStatus)
		r.Get("/api/parse/{jobID}/table", s.handleParseTable)
		r.Get("/api/parse/{jobID}/report", s.handleParseReport)
		r.Get("/api/parse/{jobID}/skips", s.handleParseSkips)
		r.Get("/api/stats/parse", s.handleParseStats)

		r.Get("/api/master", s.handleMaster)
		r.Post("/api/shortlist", s.handleShortlist)
		r.Post("/api/shortlist/upload", s.handleShortlistUpload)
		r.Post("/api/compare", s.handleCompare)
		r.Post("/api/fees", s.handleFees)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
