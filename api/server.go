/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/users/*       User creation, mood logs, points, balance, redemptions
  /api/moods/*       Reference data (onomatopoeia, scenes)
  /api/suggestions   Static suggestion provider

SECURITY NOTE:
  No authentication middleware. Users are anonymous ids; possession of an
  id is possession of the account.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", h.CreateUser)

			r.Route("/{id}", func(r chi.Router) {
				r.Post("/moods", h.RegisterMood)
				r.Get("/moods", h.MoodHistory)
				r.Get("/points/current", h.CurrentPoints)
				r.Get("/balance", h.GetBalance)
				r.Get("/rewards", h.ListRewards)
				r.Post("/redemptions", h.Redeem)
				r.Get("/redemptions", h.RedemptionHistory)
				r.Get("/summary/week", h.WeekSummary)
				r.Get("/summary/month", h.MonthSummary)
			})
		})

		r.Route("/moods", func(r chi.Router) {
			r.Get("/onomatopoeia", h.ListOnomatopoeia)
			r.Get("/scenes", h.ListScenes)
		})

		r.Get("/suggestions", h.GetSuggestion)

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
