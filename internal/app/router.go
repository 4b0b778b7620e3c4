package app

import (
	"view-router/internal/common/errors"
	"view-router/internal/common/logging"
	"view-router/internal/filter"
	"view-router/internal/handlers"
	"view-router/internal/manifest"
	"view-router/internal/navigation"
	"view-router/internal/routing"
	"view-router/internal/views"
)

// initializeRouter loads the manifest and builds the router. START_ROUTE and
// ERROR_ROUTE override the manifest's routes.
func (app *App) initializeRouter() error {
	m, err := manifest.Load(app.Config.ManifestPath)
	if err != nil {
		return err
	}
	app.Manifest = m

	dialect, err := app.dialect()
	if err != nil {
		return err
	}

	opts := navigation.Options{
		Dialect:        dialect,
		StartRoute:     firstNonEmpty(app.Config.StartRoute, m.StartRoute),
		ErrorRoute:     firstNonEmpty(app.Config.ErrorRoute, m.ErrorRoute),
		MaxRedirects:   app.Config.MaxRedirectsValue(),
		SkipValidation: app.Config.SkipRouteValidation,
		Logger:         app.Logger,
		Tracker:        app.Tracker,
		OnFatal: func(token string, err error) {
			app.Logger.Error("Navigation failed", err, logging.String("token", token))
		},
	}

	router := navigation.New(opts)
	if err := m.Apply(router.Table()); err != nil {
		return err
	}
	if err := views.Register(router, m, app.Screen); err != nil {
		return err
	}

	app.Session = handlers.NewSession()
	if app.Config.AuthSecret != "" {
		auth, err := filter.NewAuthFilter(filter.AuthConfig{
			Secret:            app.Config.AuthSecret,
			LoginRoute:        app.Config.LoginRoute,
			ProtectedPrefixes: app.Config.Prefixes(),
			Source:            app.Session.Token,
		})
		if err != nil {
			return err
		}
		if err := router.AddFilter(auth); err != nil {
			return err
		}
		app.auth = auth
		app.Logger.Info("Auth filter: Enabled", logging.Strings("protected", app.Config.Prefixes()))
	}

	app.Router = router
	app.Logger.Info("Router configured",
		logging.String("manifest", app.Config.ManifestPath),
		logging.String("dialect", dialect.String()),
		logging.Int("routes", len(m.Routes)),
		logging.Int("shells", len(m.Shells)))
	return nil
}

// dialect prefers the manifest's dialect and falls back to TOKEN_DIALECT.
func (app *App) dialect() (routing.Dialect, error) {
	name := app.Manifest.Dialect
	if name == "" {
		name = app.Config.TokenDialect
	}
	d, err := routing.ParseDialect(name)
	if err != nil {
		return d, errors.ConfigError(err.Error())
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
