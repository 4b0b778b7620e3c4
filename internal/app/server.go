package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"view-router/internal/common/logging"
	"view-router/internal/handlers"
	"view-router/internal/server"
)

func (app *App) initializeHandlers() {
	h := handlers.New(app.Router, app.History, app.Tracker, app.Logger)
	h.SetScreen(func() interface{} { return app.Screen.Snapshot() })
	if app.auth != nil {
		h.SetAuth(app.auth, app.Session)
	}
	if app.RedisClient != nil {
		h.AddHealthCheck("redis", app.RedisClient.Health)
	}
	if app.breaker != nil {
		h.AddHealthCheck("tracker", app.breaker.Check)
	}
	if n := app.Config.RateLimitValue(); n > 0 {
		app.limiter = rate.NewLimiter(rate.Limit(n), app.Config.RateBurstValue())
		app.Logger.Info("Rate limit: Enabled",
			logging.Int("per_second", n),
			logging.Int("burst", app.Config.RateBurstValue()))
	}
	app.handlers = h
}

// Handler returns the HTTP adapter's routes.
func (app *App) Handler() http.Handler {
	router := mux.NewRouter()
	SetupRoutes(router, app.handlers, app.limiter, app.Logger)
	return router
}

// RunServer creates the HTTP server for the adapter
func (app *App) RunServer() *server.Server {
	return server.New(app.Handler(), app.Config.Port, app.Config.TLSCert, app.Config.TLSKey, app.Logger)
}
