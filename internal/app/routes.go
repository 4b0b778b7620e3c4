package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"view-router/internal/common/logging"
	"view-router/internal/handlers"
	"view-router/internal/middleware"
)

// SetupRoutes configures all HTTP routes of the navigation adapter. When
// limiter is set, requests that navigate are rate limited.
func SetupRoutes(router *mux.Router, h *handlers.Handlers, limiter *rate.Limiter, logger logging.Logger) {
	router.Use(middleware.Recover(logger))
	router.Use(middleware.Logging(logger))

	limited := func(fn http.HandlerFunc) http.Handler {
		if limiter == nil {
			return fn
		}
		return middleware.RateLimit(limiter, logger)(fn)
	}

	// Health check
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	// Navigation
	router.Handle("/navigation", limited(h.Navigate)).Methods(http.MethodPost)
	nav := router.PathPrefix("/navigation").Subrouter()
	nav.HandleFunc("/current", h.GetCurrent).Methods(http.MethodGet)
	nav.Handle("/back", limited(h.Back)).Methods(http.MethodPost)
	nav.Handle("/forward", limited(h.Forward)).Methods(http.MethodPost)
	nav.HandleFunc("/history", h.GetHistory).Methods(http.MethodGet)
	nav.HandleFunc("/routes", h.GetRoutes).Methods(http.MethodGet)
	nav.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)

	// Session for the auth filter
	router.HandleFunc("/auth/session", h.GetSession).Methods(http.MethodGet)
	router.HandleFunc("/auth/session", h.HandleLogin).Methods(http.MethodPost)
	router.HandleFunc("/auth/session", h.HandleLogout).Methods(http.MethodDelete)
}
