package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all routes.
func (s *Server) setupRoutes() {
	r := s.router

	// Board page and assets
	r.Get("/", s.boardPage)
	r.Handle("/static/*", staticHandler())
	r.Get("/health", s.health)

	// Project routes
	r.Route("/project", func(r chi.Router) {
		r.Get("/", s.listProjects)
		r.Post("/", s.createProject)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", s.getProject)
			r.Post("/move", s.moveProject)
		})
	})

	// Board fragments and forwarded gestures
	r.Route("/board/list/{status}", func(r chi.Router) {
		r.Get("/", s.listFragment)
		r.Post("/drop", s.dropOnList)
	})

	// Event streaming (SSE)
	r.Get("/event", s.allEvents)
}
