package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hobbycircles/hobby-circles/internal/config"
	"github.com/hobbycircles/hobby-circles/internal/handlers"
	"github.com/hobbycircles/hobby-circles/internal/middleware"
)

// NewRouter wires middleware and routes around the handler set.
func NewRouter(cfg *config.Config, h *handlers.Handler, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/options", h.Options)
		r.Get("/stats", h.Stats)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.RegisterUser)
			r.Get("/", h.ListUsers)
			r.Get("/{username}", h.GetUser)
			r.Get("/{username}/matches", h.FindMatches)
			r.Get("/{username}/matches/count", h.CountMatches)
		})

		r.Route("/activities", func(r chi.Router) {
			r.Post("/", h.PostActivity)
			r.Get("/recent", h.RecentActivities)
		})
	})

	return r
}

// StartHTTPServer boots the HTTP server on the configured address.
func StartHTTPServer(cfg *config.Config, handler http.Handler) error {
	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return srv.ListenAndServe()
}
