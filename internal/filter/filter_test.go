package filter

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"view-router/internal/common/errors"
	"view-router/internal/routing"
)

func token(t *testing.T, raw string) routing.NavigationToken {
	t.Helper()
	tok, err := routing.NewParser(routing.DialectSlash).Parse(raw)
	require.NoError(t, err)
	return tok
}

func TestDecision(t *testing.T) {
	assert.False(t, Continue().IsRedirect())
	assert.Empty(t, Continue().Redirect())

	d := RedirectTo("/app/login")
	assert.True(t, d.IsRedirect())
	assert.Equal(t, "/app/login", d.Redirect())
}

func TestFunc(t *testing.T) {
	var seen string
	f := Func(func(tok routing.NavigationToken) (Decision, error) {
		seen = tok.ShellID
		return Continue(), nil
	})

	d, err := f.Execute(token(t, "/app/home"))
	require.NoError(t, err)
	assert.False(t, d.IsRedirect())
	assert.Equal(t, "app", seen)
	assert.Equal(t, "filter", NameOf(f))
}

func TestAuthFilter(t *testing.T) {
	var current string
	auth, err := NewAuthFilter(AuthConfig{
		Secret:            "test-secret",
		LoginRoute:        "/app/login",
		ProtectedPrefixes: []string{"/app/admin", " ", "app/account/"},
		Source:            func() string { return current },
	})
	require.NoError(t, err)
	assert.Equal(t, "auth", NameOf(auth))

	valid, err := auth.Sign("alice", time.Hour)
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Username: "mallory"}).SignedString([]byte("other"))
	require.NoError(t, err)

	tests := []struct {
		name         string
		raw          string
		jwt          string
		wantRedirect bool
	}{
		{"public route", "/app/home", "", false},
		{"prefix boundary", "/app/administrator", "", false},
		{"protected without token", "/app/admin", "", true},
		{"protected child without token", "/app/account/settings", "", true},
		{"protected with valid token", "/app/admin/users", valid, false},
		{"protected with expired token", "/app/admin", expiredToken, true},
		{"protected with foreign signature", "/app/admin", foreign, true},
		{"protected with garbage", "/app/admin", "not-a-jwt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current = tt.jwt
			d, err := auth.Execute(token(t, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.wantRedirect, d.IsRedirect())
			if tt.wantRedirect {
				assert.Equal(t, "/app/login", d.Redirect())
			}
		})
	}

	claims, err := auth.Verify(valid)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestNewAuthFilter_Config(t *testing.T) {
	src := func() string { return "" }

	tests := []struct {
		name string
		cfg  AuthConfig
	}{
		{"missing secret", AuthConfig{LoginRoute: "/app/login", Source: src}},
		{"missing login route", AuthConfig{Secret: "s", Source: src}},
		{"missing source", AuthConfig{Secret: "s", LoginRoute: "/app/login"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAuthFilter(tt.cfg)
			assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
		})
	}
}
