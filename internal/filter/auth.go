package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"view-router/internal/common/errors"
	"view-router/internal/routing"
)

// Claims are the JWT claims accepted by AuthFilter.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenSource returns the current raw JWT, empty when the user is signed out.
type TokenSource func() string

// AuthConfig configures AuthFilter.
type AuthConfig struct {
	Secret            string
	LoginRoute        string
	ProtectedPrefixes []string
	Source            TokenSource
}

// AuthFilter redirects navigation to protected routes to the login route
// unless the token source yields a valid HS256 token.
type AuthFilter struct {
	secret     []byte
	loginRoute string
	protected  []string
	source     TokenSource
	parser     *jwt.Parser
}

// NewAuthFilter creates an auth filter.
func NewAuthFilter(cfg AuthConfig) (*AuthFilter, error) {
	if cfg.Secret == "" {
		return nil, errors.ConfigError("auth filter requires a secret")
	}
	if cfg.LoginRoute == "" {
		return nil, errors.ConfigError("auth filter requires a login route")
	}
	if cfg.Source == nil {
		return nil, errors.ConfigError("auth filter requires a token source")
	}

	protected := make([]string, 0, len(cfg.ProtectedPrefixes))
	for _, p := range cfg.ProtectedPrefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		protected = append(protected, "/"+strings.Trim(p, "/"))
	}

	return &AuthFilter{
		secret:     []byte(cfg.Secret),
		loginRoute: cfg.LoginRoute,
		protected:  protected,
		source:     cfg.Source,
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

// Name implements Named.
func (a *AuthFilter) Name() string {
	return "auth"
}

// Execute implements Filter.
func (a *AuthFilter) Execute(token routing.NavigationToken) (Decision, error) {
	if !a.isProtected(token.Route()) {
		return Continue(), nil
	}

	raw := a.source()
	if raw == "" {
		return RedirectTo(a.loginRoute), nil
	}
	if _, err := a.Verify(raw); err != nil {
		return RedirectTo(a.loginRoute), nil
	}
	return Continue(), nil
}

// Verify parses and validates a signed token.
func (a *AuthFilter) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := a.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("invalid auth token: %v", err))
	}
	if !parsed.Valid {
		return nil, errors.ValidationError("invalid auth token")
	}
	return claims, nil
}

// Sign issues a token for username valid for ttl.
func (a *AuthFilter) Sign(username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *AuthFilter) isProtected(route string) bool {
	for _, prefix := range a.protected {
		if route == prefix || strings.HasPrefix(route, prefix+"/") {
			return true
		}
	}
	return false
}
