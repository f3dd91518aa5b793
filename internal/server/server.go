// Package server provides the HTTP server for the rep counter.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayusman/repcount/internal/exercise"
	"github.com/ayusman/repcount/internal/metrics"
	"github.com/ayusman/repcount/internal/server/api"
)

// Config holds the server configuration. Routes whose dependency is nil are
// not mounted.
type Config struct {
	StaticDir string
	Registry  *exercise.Registry
	App       api.Controller
	Hub       *Hub
	Metrics   *metrics.Manager
	Gatherer  prometheus.Gatherer
}

// Server represents the HTTP server.
type Server struct {
	config Config
	router chi.Router
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(RequestLogging)
	if s.config.Metrics != nil {
		s.router.Use(RequestMetrics(s.config.Metrics))
	}
	s.router.Use(CORS)

	s.router.Get("/api/health", s.handleHealth)

	if s.config.Registry != nil {
		exercises := api.NewExerciseHandler(s.config.Registry)
		s.router.Get("/api/exercises", exercises.List)
	}

	if s.config.App != nil {
		sessions := api.NewSessionHandler(s.config.App)
		s.router.Route("/api/sessions", func(r chi.Router) {
			r.Get("/", sessions.History)
			r.Post("/", sessions.Start)
			r.Get("/current", sessions.Current)
			r.Delete("/current", sessions.Stop)
			r.Post("/current/frames", sessions.Frame)
		})
		s.router.Get("/api/progress/pending", sessions.Pending)
	}

	if s.config.Hub != nil {
		s.router.Get("/api/events", s.config.Hub.ServeHTTP)
	}

	if s.config.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}

	if s.config.StaticDir != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}
