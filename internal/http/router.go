package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/gsyncapp/gsync/internal/api"
	"github.com/gsyncapp/gsync/internal/auth"
	"github.com/gsyncapp/gsync/internal/config"
	"github.com/gsyncapp/gsync/internal/http/ratelimit"
	"github.com/gsyncapp/gsync/internal/metrics"
	"github.com/gsyncapp/gsync/internal/store"
)

// NewRouter wires all HTTP routes for the OAuth flow and the JSON API.
func NewRouter(cfg *config.Config, stor *store.Store, authService *auth.Service, apiHandler *api.Handler) http.Handler {
	r := chi.NewRouter()

	// Auth endpoints: 5 requests per second, burst of 10
	authRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(5), 10, 5*time.Minute, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := stor.HealthCheck(ctx); err != nil {
			http.Error(w, "unready", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(authRateLimiter.Middleware())
		r.Get("/init/", authService.BeginOAuth)
		r.Get("/callback/", authService.HandleOAuthCallback)
	})

	r.Get("/profile/", apiHandler.Profile)

	r.Get("/events/", apiHandler.ListEvents)
	r.Get("/events/sync", apiHandler.ListEvents)
	r.Post("/events/create", apiHandler.CreateEvent)
	r.Put("/events/update", apiHandler.UpdateEvent)
	r.Delete("/events/delete", apiHandler.DeleteEvent)

	r.Get("/tasks/", apiHandler.ListTasks)
	r.Delete("/tasks/delete", apiHandler.DeleteTask)

	r.Get("/calendars/", apiHandler.ListCalendars)
	r.Post("/calendars/default/", apiHandler.SetDefaultCalendar)

	r.Post("/items/create/", apiHandler.CreateItem)
	r.Get("/items/", apiHandler.ListItems)

	return r
}
