// Package http wires the chi router and the HTTP server.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patlytics/internal/interfaces/http/handlers"
	"github.com/patlytics/patlytics/internal/interfaces/http/middleware"
)

// RouterConfig aggregates everything the router needs.
type RouterConfig struct {
	Logger logging.Logger

	AuthHandler         *handlers.AuthHandler
	InfringementHandler *handlers.InfringementHandler
	ReportHandler       *handlers.ReportHandler
	HealthHandler       *handlers.HealthHandler

	Auth        *middleware.Auth
	HTTPMetrics middleware.HTTPMetrics
	// MetricsHandler serves the scrape endpoint; nil disables /metrics.
	MetricsHandler http.Handler

	CORSAllowedOrigins []string
}

// NewRouter builds the full route tree.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.RequestLogger(cfg.Logger, cfg.HTTPMetrics))

	r.Get("/healthz", cfg.HealthHandler.Live)
	r.Get("/readyz", cfg.HealthHandler.Ready)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/refresh", cfg.AuthHandler.Refresh)
			r.With(cfg.Auth.Required).Get("/me", cfg.AuthHandler.Me)
		})

		r.With(cfg.Auth.Optional).Post("/infringements", cfg.InfringementHandler.Assess)
		r.Get("/companies", cfg.InfringementHandler.ListCompanies)
		r.Get("/companies/resolve", cfg.InfringementHandler.ResolveCompany)

		r.Route("/reports", func(r chi.Router) {
			r.Use(cfg.Auth.Required)
			r.Get("/", cfg.ReportHandler.List)
			r.Get("/{id}", cfg.ReportHandler.Get)
		})
	})

	return r
}
