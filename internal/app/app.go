package app

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"view-router/internal/common/logging"
	"view-router/internal/config"
	"view-router/internal/filter"
	"view-router/internal/handlers"
	"view-router/internal/manifest"
	"view-router/internal/navigation"
	"view-router/internal/redis"
	"view-router/internal/tracker"
	"view-router/internal/views"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Logger      logging.Logger
	RedisClient *redis.Client
	Manifest    *manifest.Manifest
	Router      *navigation.Router
	History     handlers.History
	Tracker     tracker.Recorder
	Screen      *views.Screen
	Session     *handlers.Session

	auth     *filter.AuthFilter
	breaker  *tracker.Guarded
	limiter  *rate.Limiter
	handlers *handlers.Handlers
}

// New creates a new application instance with all dependencies. The router
// is configured but not started.
func New(cfg *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	app := &App{
		Config: cfg,
		Logger: logger.WithFields(logging.String("component", "app")),
		Screen: views.NewScreen(),
	}

	// Initialize components in order of dependency
	if err := app.initializeRedis(); err != nil {
		return nil, err
	}

	if err := app.initializeTracking(); err != nil {
		app.Cleanup()
		return nil, err
	}

	if err := app.initializeRouter(); err != nil {
		app.Cleanup()
		return nil, err
	}

	app.initializeHandlers()
	return app, nil
}

// Start starts the router and boots it from the history.
func (app *App) Start(ctx context.Context) (*navigation.Result, error) {
	if err := app.Router.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start router: %w", err)
	}

	res, err := app.Router.Boot(app.History).Wait(ctx)
	if err != nil {
		app.Logger.Warn("Boot navigation failed", logging.Err(err))
		return res, err
	}
	app.Logger.Info("Router booted",
		logging.String("token", res.Final),
		logging.String("controller", res.Controller))
	return res, nil
}

// Shutdown stops the router; navigations still in flight complete with
// navigation.ErrStopped.
func (app *App) Shutdown(ctx context.Context) error {
	if app.Router == nil || !app.Router.IsRunning() {
		return nil
	}
	if err := app.Router.Stop(); err != nil {
		app.Logger.Warn("Error stopping router", logging.Err(err))
		return err
	}
	app.Logger.Info("Router stopped")
	return nil
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Logger.Warn("Error closing Redis", logging.Err(err))
		}
		app.RedisClient = nil
	}
}
