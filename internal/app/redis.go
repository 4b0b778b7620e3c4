package app

import (
	"view-router/internal/common/logging"
	"view-router/internal/redis"
)

func (app *App) initializeRedis() error {
	if !app.Config.UsesRedis() {
		app.Logger.Info("Redis: Not configured (local tracker and in-memory history)")
		return nil
	}

	redisConfig := &redis.Config{
		Address:  app.Config.RedisAddress,
		Password: app.Config.RedisPassword,
		DB:       app.Config.RedisDBValue(),
		PoolSize: app.Config.RedisPoolSizeValue(),
	}

	redisClient, err := redis.NewClient(redisConfig)
	if err != nil {
		return err
	}

	app.RedisClient = redisClient
	app.Logger.Info("Redis: Connected",
		logging.String("address", app.Config.RedisAddress),
		logging.String("tracker", app.Config.TrackerBackend),
		logging.String("history", app.Config.HistoryBackend))
	return nil
}
