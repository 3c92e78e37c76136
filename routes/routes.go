package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/outreachworks/crm-bridge/app"
	"github.com/outreachworks/crm-bridge/handlers"
	"github.com/outreachworks/crm-bridge/middleware"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RecoverJSON(deps.Logger))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// The contact form is embedded on tenant pages, so the API is called
	// cross-origin from arbitrary sites.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Language", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	// Install flow
	r.Post("/install", handlers.InstallHandler(deps))
	r.Get("/oauth/callback", handlers.OAuthCallbackHandler(deps))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.APIHealthHandler(deps))

		// Tenant-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(deps.AccountMiddleware.RequireAccount)
			r.Post("/contact_requests", handlers.CreateContactRequestHandler(deps))
			r.Post("/events", handlers.CreateEventHandler(deps))
			r.Get("/events", handlers.ListEventsHandler(deps))
		})
	})

	return r
}
