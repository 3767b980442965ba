// Package api serves the checker's read-only status endpoints.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	corslib "github.com/rs/cors"

	"github.com/albapepper/doctolib-checker/internal/api/handler"
	"github.com/albapepper/doctolib-checker/internal/config"
	"github.com/albapepper/doctolib-checker/internal/poller"
)

const (
	rateLimitRequests = 120
	rateLimitWindow   = time.Minute
)

// NewRouter creates the Chi router for the status server.
func NewRouter(status *poller.Status, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)

	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.StatusCORSOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)
	r.Use(RateLimitMiddleware(rateLimitRequests, rateLimitWindow))

	h := handler.New(status, cfg)

	// --- Routes ---
	r.Get("/health", h.Health)
	r.Get("/status", h.Status)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
