package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// NewRouter wires HTTP handlers around the tracker and returns an http.Handler.
func NewRouter(tr Tracker, allowedOrigins []string) http.Handler {
	h := &Handler{Tracker: tr}

	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/route", h.Route)
		r.Get("/bus", h.Bus)
		r.Get("/position", h.Position)
		r.Get("/search", h.Search)
	})

	return r
}
