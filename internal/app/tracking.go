package app

import (
	"context"
	"time"

	"view-router/internal/common/cache"
	"view-router/internal/common/logging"
	"view-router/internal/history"
	"view-router/internal/tracker"
)

// initializeTracking sets up the navigation tracker and the history the
// router boots from.
func (app *App) initializeTracking() error {
	limit := app.Config.RecentLimitValue()

	switch app.Config.TrackerBackend {
	case "redis":
		counter := tracker.NewRedis(app.RedisClient, app.Config.TrackerKeyPrefix, limit, app.Logger)
		app.breaker = tracker.NewGuarded(counter, tracker.DefaultBreakerConfig(), app.Logger)
		app.Tracker = app.breaker
		app.Logger.Info("Tracker: Redis", logging.String("prefix", app.Config.TrackerKeyPrefix))
	case "local":
		app.Tracker = tracker.NewLocal(limit, app.Logger)
		app.Logger.Info("Tracker: Local")
	default:
		app.Logger.Info("Tracker: Disabled")
	}

	if app.Config.HistoryBackend != "redis" {
		app.History = history.NewMemory("", history.DefaultLimit)
		return nil
	}

	store, err := cache.New(cache.Config{
		Type:        cache.TypeRedis,
		TTL:         cache.NoExpiration,
		KeyPrefix:   app.Config.TrackerKeyPrefix,
		RedisClient: app.RedisClient.Raw(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	persistent := history.NewPersistent(ctx, store, history.DefaultLimit, app.Logger)
	app.History = persistent
	app.Logger.Info("History: Redis", logging.String("restored", persistent.CurrentToken()))
	return nil
}
