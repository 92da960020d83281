package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"storemon/app/internal/auth"
	"storemon/app/internal/ratelimit"
	"storemon/app/internal/reports"
)

// SetupRoutes configures all HTTP routes and middlewares
func SetupRoutes(authMgr *auth.Auth, registry *reports.Registry, gen *reports.Generator, dataDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.With(ratelimit.Middleware(ratelimit.TriggerLimiter)).
		Post("/trigger_report", HandleTriggerReport(registry, gen))
	r.With(ratelimit.Middleware(ratelimit.APILimiter)).
		Get("/get_report", HandleGetReport(registry))
	r.Get("/health", HandleHealth())

	r.Post("/api/admin/ingest", authMgr.RequireAuth(HandleIngest(dataDir)))

	return r
}
