// Package server exposes the curated editions to the personalization frontend
// and provides the externally invoked cron trigger. Handlers are thin and
// stateless; all pipeline logic lives in the curator.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"policybrief/internal/config"
	"policybrief/internal/curator"
	"policybrief/internal/logger"
	"policybrief/internal/persistence"
)

// Server is the HTTP server over the durable store and the curator.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	db         persistence.Database
	curator    *curator.Curator
	log        *slog.Logger
}

// New creates a new HTTP server instance.
func New(db persistence.Database, cur *curator.Curator, cfg config.Server) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		db:      db,
		curator: cur,
		log:     logger.Get(),
	}

	s.setupMiddleware(cfg)
	s.setupRoutes()

	// No WriteTimeout: the curation trigger holds its response open for the
	// length of a pipeline run. Response deadlines for the regular API routes
	// are enforced by the timeout middleware instead.
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:     s.router,
		ReadTimeout: cfg.ReadTimeout,
		IdleTimeout: cfg.IdleTimeout,
	}
	return s
}

func (s *Server) setupMiddleware(cfg config.Server) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			r.Get("/editions", s.handleListEditions)
			r.Get("/editions/today", s.handleGetToday)
			r.Get("/editions/{date}", s.handleGetEdition)
			r.Post("/editions/{date}/publish", s.handlePublishEdition)
			r.Delete("/editions/{date}", s.handleResetEdition)
			r.Post("/articles/{id}/reject", s.handleRejectArticle)
		})

		// The curation trigger runs the whole pipeline synchronously. With
		// LLM retries and backoff a run can take minutes, so no request
		// timeout applies here; the handler also detaches from the request
		// context so a disconnecting caller cannot abort a run in flight.
		r.Post("/cron/curate", s.handleCronCurate)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.log.Info("HTTP server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Router returns the underlying router. Used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}
