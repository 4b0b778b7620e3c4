package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"view-router/internal/filter"
	"view-router/internal/handlers"
	"view-router/internal/history"
	"view-router/internal/manifest"
	"view-router/internal/navigation"
	"view-router/internal/tracker"
	"view-router/internal/views"
)

const testManifest = `
start_route: /app/home
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
  - route: /dashboard
    shell: admin
    controller: app.DashboardController
    selector: content
`

const testSecret = "0123456789abcdef0123456789abcdef"

type fixture struct {
	router  *navigation.Router
	history *history.Memory
	tracker *tracker.Counter
	screen  *views.Screen
	h       *handlers.Handlers
	session *handlers.Session
}

// newFixture boots a router with headless views on /app/home. withAuth
// protects the admin shell behind the session token.
func newFixture(t *testing.T, withAuth bool) *fixture {
	t.Helper()

	m, err := manifest.Parse([]byte(testManifest))
	require.NoError(t, err)

	f := &fixture{
		history: history.NewMemory("", 0),
		tracker: tracker.NewLocal(10, nil),
		screen:  views.NewScreen(),
		session: handlers.NewSession(),
	}
	f.router = navigation.New(navigation.Options{StartRoute: m.StartRoute, Tracker: f.tracker})
	require.NoError(t, m.Apply(f.router.Table()))
	require.NoError(t, views.Register(f.router, m, f.screen))

	var auth *filter.AuthFilter
	if withAuth {
		auth, err = filter.NewAuthFilter(filter.AuthConfig{
			Secret:            testSecret,
			LoginRoute:        "/app/login",
			ProtectedPrefixes: []string{"admin"},
			Source:            f.session.Token,
		})
		require.NoError(t, err)
		require.NoError(t, f.router.AddFilter(auth))
	}

	require.NoError(t, f.router.Start(context.Background()))
	t.Cleanup(func() { _ = f.router.Stop() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = f.router.Boot(f.history).Wait(ctx)
	require.NoError(t, err)

	f.h = handlers.New(f.router, f.history, f.tracker, nil)
	f.h.SetScreen(func() interface{} { return f.screen.Snapshot() })
	if auth != nil {
		f.h.SetAuth(auth, f.session)
	}
	return f
}

func call(handler http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestGetCurrent(t *testing.T) {
	f := newFixture(t, false)

	rec := call(f.h.GetCurrent, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Token  string                        `json:"token"`
		Route  string                        `json:"route"`
		Active []navigation.ActiveController `json:"active"`
		Screen views.ScreenSnapshot          `json:"screen"`
	}
	decodeBody(t, rec, &resp)

	assert.Equal(t, "/app/home", resp.Token)
	assert.Equal(t, "/app/home", resp.Route)
	require.Len(t, resp.Active, 1)
	assert.Equal(t, "app.HomeController", resp.Active[0].Controller)
	assert.Equal(t, "app", resp.Screen.Shell)
	assert.Equal(t, "app.HomeController", resp.Screen.Slots["content"].Type)
}

func TestNavigate(t *testing.T) {
	f := newFixture(t, false)

	t.Run("token", func(t *testing.T) {
		rec := call(f.h.Navigate, http.MethodPost, `{"token":"/app/users/42"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp handlers.NavigationResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "/app/users/42", resp.Final)
		assert.Equal(t, "/app/users/*", resp.Route)
		assert.Equal(t, "app.UserController", resp.Controller)
		assert.Empty(t, resp.Error)
		assert.Equal(t, "/app/users/42", f.history.CurrentToken())
	})

	t.Run("route with params", func(t *testing.T) {
		rec := call(f.h.Navigate, http.MethodPost, `{"route":"/app/users/:id","params":["7"]}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp handlers.NavigationResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "/app/users/7", resp.Final)
	})

	t.Run("unknown token is fatal", func(t *testing.T) {
		rec := call(f.h.Navigate, http.MethodPost, `{"token":"/app/nowhere"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp handlers.NavigationResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "route_not_found", resp.ErrorType)
		assert.Equal(t, "/app/users/7", f.history.CurrentToken())
	})

	t.Run("invalid requests", func(t *testing.T) {
		for name, body := range map[string]string{
			"malformed json":       `{"token":`,
			"unknown field":        `{"path":"/app/home"}`,
			"empty":                `{}`,
			"token and route":      `{"token":"/app/home","route":"/app/home"}`,
			"route names no shell": `{"route":"/"}`,
		} {
			rec := call(f.h.Navigate, http.MethodPost, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		}
	})
}

func TestBackForward(t *testing.T) {
	f := newFixture(t, false)

	rec := call(f.h.Navigate, http.MethodPost, `{"token":"/app/users/1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(f.h.Back, http.MethodPost, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp handlers.NavigationResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "/app/home", resp.Final)

	rec = call(f.h.Back, http.MethodPost, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(f.h.Forward, http.MethodPost, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.Equal(t, "/app/users/1", resp.Final)

	rec = call(f.h.Forward, http.MethodPost, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(f.h.GetHistory, http.MethodGet, "")
	var hist struct {
		Current string   `json:"current"`
		Entries []string `json:"entries"`
	}
	decodeBody(t, rec, &hist)
	assert.Equal(t, "/app/users/1", hist.Current)
	assert.Equal(t, []string{"/app/home", "/app/users/1"}, hist.Entries)
}

func TestBackForward_FailedNavigationKeepsCursor(t *testing.T) {
	f := newFixture(t, false)

	f.history.Push("/app/missing")
	rec := call(f.h.Navigate, http.MethodPost, `{"token":"/app/users/1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"/app/home", "/app/missing", "/app/users/1"}, f.history.Entries())

	rec = call(f.h.Back, http.MethodPost, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "/app/users/1", f.history.CurrentToken())

	f.history.Back()
	f.history.Back()
	require.Equal(t, "/app/home", f.history.CurrentToken())

	rec = call(f.h.Forward, http.MethodPost, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "/app/home", f.history.CurrentToken())
	assert.Equal(t, []string{"/app/home", "/app/missing", "/app/users/1"}, f.history.Entries())
}

func TestNavigate_RouterStopped(t *testing.T) {
	f := newFixture(t, false)
	require.NoError(t, f.router.Stop())

	rec := call(f.h.Navigate, http.MethodPost, `{"token":"/app/home"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = call(f.h.HealthCheck, http.MethodGet, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetRoutes(t *testing.T) {
	f := newFixture(t, false)

	rec := call(f.h.GetRoutes, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var routes []handlers.RouteResponse
	decodeBody(t, rec, &routes)
	require.Len(t, routes, 4)
	assert.Equal(t, "/app/users/*", routes[1].Route)
	assert.Equal(t, "/users/:id", routes[1].Pattern)
	assert.Equal(t, []string{"id"}, routes[1].Setters)
	assert.Equal(t, "admin", routes[3].Shell)
}

func TestGetStats(t *testing.T) {
	f := newFixture(t, false)

	call(f.h.Navigate, http.MethodPost, `{"token":"/app/users/1"}`)
	call(f.h.Navigate, http.MethodPost, `{"token":"/app/users/2"}`)

	rec := call(f.h.GetStats, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats handlers.StatsResponse
	decodeBody(t, rec, &stats)
	assert.Equal(t, int64(3), stats.Metrics.Settled)
	assert.Equal(t, int64(2), stats.Hits["/app/users/*"])
	assert.Equal(t, int64(1), stats.Hits["/app/home"])
	assert.Equal(t, []string{"/app/users/*", "/app/home"}, stats.Top)
	require.Len(t, stats.Recent, 3)
	assert.Equal(t, "/app/users/2", stats.Recent[0].Token)
}

func TestGetStats_WithoutTracker(t *testing.T) {
	f := newFixture(t, false)
	h := handlers.New(f.router, f.history, nil, nil)

	rec := call(h.GetStats, http.MethodGet, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, mustField(t, rec, "recent"))
}

func mustField(t *testing.T, rec *httptest.ResponseRecorder, name string) string {
	t.Helper()
	var fields map[string]json.RawMessage
	decodeBody(t, rec, &fields)
	raw, ok := fields[name]
	require.True(t, ok, "missing field %s", name)
	return string(raw)
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t, false)

	rec := call(f.h.HealthCheck, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"healthy"`, mustField(t, rec, "status"))

	f.h.AddHealthCheck("redis", func() error { return errors.New("connection refused") })
	rec = call(f.h.HealthCheck, http.MethodGet, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `"connection refused"`, mustField(t, rec, "redis"))
}

func TestSession(t *testing.T) {
	f := newFixture(t, true)

	rec := call(f.h.Navigate, http.MethodPost, `{"token":"/admin/dashboard"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp handlers.NavigationResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "/app/login", resp.Final)
	assert.Equal(t, []string{"/app/login"}, resp.Redirects)

	rec = call(f.h.HandleLogin, http.MethodPost, `{"username":"ada","ttl":"10m"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session handlers.SessionResponse
	decodeBody(t, rec, &session)
	assert.True(t, session.Authenticated)
	assert.Equal(t, "ada", session.Username)
	assert.NotEmpty(t, f.session.Token())

	rec = call(f.h.Navigate, http.MethodPost, `{"token":"/admin/dashboard"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.Equal(t, "/admin/dashboard", resp.Final)

	rec = call(f.h.GetSession, http.MethodGet, "")
	decodeBody(t, rec, &session)
	assert.True(t, session.Authenticated)

	rec = call(f.h.HandleLogout, http.MethodDelete, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, f.session.Token())

	t.Run("rejects foreign tokens", func(t *testing.T) {
		rec := call(f.h.HandleLogin, http.MethodPost, `{"token":"not-a-jwt"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects bad ttl", func(t *testing.T) {
		rec := call(f.h.HandleLogin, http.MethodPost, `{"username":"ada","ttl":"soon"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSession_Disabled(t *testing.T) {
	f := newFixture(t, false)

	rec := call(f.h.HandleLogin, http.MethodPost, `{"username":"ada"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(f.h.GetSession, http.MethodGet, "")
	assert.JSONEq(t, `false`, mustField(t, rec, "authenticated"))
}
