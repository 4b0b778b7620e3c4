package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"view-router/internal/config"
)

const manifestDoc = `
start_route: /app/home
error_route: /app/error
shells:
  - id: app
    type: app.Shell
    selectors: [content]
  - id: admin
    type: app.Shell
    selectors: [content]
routes:
  - route: /home
    shell: app
    controller: app.HomeController
    selector: content
  - route: /users/:id
    shell: app
    controller: app.UserController
    selector: content
  - route: /login
    shell: app
    controller: app.LoginController
    selector: content
  - route: /error
    shell: app
    controller: app.ErrorController
    selector: content
  - route: /dashboard
    shell: admin
    controller: app.DashboardController
    selector: content
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifestDoc), 0o600))

	return &config.Config{
		Port:               "0",
		LogLevel:           "error",
		TokenDialect:       "slash",
		MaxRedirects:       "8",
		ManifestPath:       path,
		TrackerBackend:     "local",
		TrackerKeyPrefix:   "nav:",
		TrackerRecentLimit: "10",
		HistoryBackend:     "memory",
		RedisDB:            "0",
		RedisPoolSize:      "5",
	}
}

func startApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()

	app, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(app.Cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = app.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Shutdown(context.Background()) })
	return app
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	if strings.HasPrefix(rec.Body.String(), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestApp_BootAndServe(t *testing.T) {
	app := startApp(t, testConfig(t))
	h := app.Handler()

	rec, body := do(t, h, http.MethodGet, "/navigation/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/app/home", body["token"])

	rec, body = do(t, h, http.MethodPost, "/navigation", `{"token":"/app/users/9"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "/app/users/9", body["final"])

	rec, body = do(t, h, http.MethodPost, "/navigation", `{"token":"/app/missing"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/app/error", body["final"])
	assert.Equal(t, "app.ErrorController", body["controller"])

	rec, body = do(t, h, http.MethodGet, "/navigation/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	routingErr, ok := body["routing_error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "route_not_found", routingErr["type"])

	rec, _ = do(t, h, http.MethodPost, "/navigation/back", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, h, http.MethodGet, "/navigation/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	hits := body["hits"].(map[string]interface{})
	assert.Equal(t, float64(2), hits["/app/users/*"])

	rec, _ = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApp_AuthFilter(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuthSecret = "this-is-a-valid-auth-secret-with-32-plus-chars"
	cfg.LoginRoute = "/app/login"
	cfg.ProtectedPrefixes = "/admin"

	app := startApp(t, cfg)
	h := app.Handler()

	_, body := do(t, h, http.MethodPost, "/navigation", `{"route":"/admin/dashboard"}`)
	assert.Equal(t, "/app/login", body["final"])

	rec, _ := do(t, h, http.MethodPost, "/auth/session", `{"username":"ada"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, body = do(t, h, http.MethodPost, "/navigation", `{"route":"/admin/dashboard"}`)
	assert.Equal(t, "/admin/dashboard", body["final"])

	rec, _ = do(t, h, http.MethodDelete, "/auth/session", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestApp_RedisBackends(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := testConfig(t)
	cfg.TrackerBackend = "redis"
	cfg.HistoryBackend = "redis"
	cfg.RedisAddress = mr.Addr()

	app := startApp(t, cfg)
	h := app.Handler()

	rec, _ := do(t, h, http.MethodPost, "/navigation", `{"token":"/app/users/3"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, body := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["redis"])
	assert.Equal(t, "healthy", body["tracker"])

	require.NoError(t, app.Shutdown(context.Background()))
	app.Cleanup()

	// A second process resumes where the first one left off.
	restarted := startApp(t, cfg)
	_, body = do(t, restarted.Handler(), http.MethodGet, "/navigation/current", "")
	assert.Equal(t, "/app/users/3", body["token"])

	_, body = do(t, restarted.Handler(), http.MethodGet, "/navigation/stats", "")
	hits := body["hits"].(map[string]interface{})
	assert.Equal(t, float64(2), hits["/app/users/*"])
}

func TestApp_InvalidManifest(t *testing.T) {
	cfg := testConfig(t)
	cfg.ManifestPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestApp_StartRouteOverride(t *testing.T) {
	cfg := testConfig(t)
	cfg.StartRoute = "/admin/dashboard"

	app := startApp(t, cfg)
	_, body := do(t, app.Handler(), http.MethodGet, "/navigation/current", "")
	assert.Equal(t, "/admin/dashboard", body["token"])
}

func TestApp_RateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit = "1"
	cfg.RateBurst = "1"

	app := startApp(t, cfg)
	h := app.Handler()

	rec, _ := do(t, h, http.MethodPost, "/navigation", `{"token":"/app/users/1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/navigation", `{"token":"/app/users/2"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/navigation/current", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
