package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(SecurityHeaders)

	if s.gatherer != nil {
		s.router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})

		r.Route("/departments", func(r chi.Router) {
			r.Get("/", s.handleListDepartments)
			r.Get("/{id}", s.handleGetDepartment)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Put("/mode", s.handleSetMode)
				r.Post("/select", s.handleSelect)
				r.Post("/reset", s.handleResetSession)
				r.Get("/ws", s.handleSelectionStream)
			})
		})

		r.Route("/applications", func(r chi.Router) {
			r.Post("/", s.handleSubmitApplication)

			if s.adminToken == "" {
				s.logger.Warn("Admin token not configured; application review endpoints disabled")
				return
			}
			r.Group(func(r chi.Router) {
				r.Use(RequireBearer(s.adminToken))
				r.Get("/", s.handleListApplications)
				r.Get("/stats", s.handleApplicationStats)
				r.Get("/{id}", s.handleGetApplication)
				r.Delete("/{id}", s.handleDeleteApplication)
			})
		})

		if s.adminToken != "" {
			r.With(RequireBearer(s.adminToken)).Get("/security/events", s.handleSecurityEvents)
		}
	})
}
