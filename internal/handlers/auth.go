package handlers

import (
	"net/http"
	"sync"
	"time"

	"view-router/internal/common/errors"
	"view-router/internal/common/logging"
	"view-router/internal/common/validation"
)

const defaultSessionTTL = time.Hour

// Session holds the auth token of the single client the adapter serves.
// Its Token method is the auth filter's token source.
type Session struct {
	mu    sync.RWMutex
	token string
}

func NewSession() *Session {
	return &Session{}
}

// Token returns the current token, empty when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// LoginRequest either carries a token issued elsewhere or names the user to
// sign a token for.
type LoginRequest struct {
	Token    string `json:"token,omitempty" validate:"required_without=Username"`
	Username string `json:"username,omitempty" validate:"required_without=Token,omitempty,min=1,max=64"`
	TTL      string `json:"ttl,omitempty" validate:"omitempty,duration"`
}

// SessionResponse describes the signed-in user.
type SessionResponse struct {
	Authenticated bool      `json:"authenticated"`
	Username      string    `json:"username,omitempty"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
	Token         string    `json:"token,omitempty"`
}

// HandleLogin stores a session token
// @Summary Sign in
// @Description Verifies a provided token or signs one for username; protected routes become reachable
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse "Invalid token"
// @Failure 404 {object} errorResponse "Auth disabled"
// @Router /auth/session [post]
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeError(w, http.StatusNotFound, errors.NotFoundError("auth"))
		return
	}

	var req LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	token := req.Token
	if token == "" {
		ttl := defaultSessionTTL
		if req.TTL != "" {
			ttl, _ = time.ParseDuration(req.TTL)
		}
		signed, err := h.auth.Sign(req.Username, ttl)
		if err != nil {
			writeError(w, http.StatusInternalServerError, errors.InternalError("failed to sign token", err))
			return
		}
		token = signed
	}

	claims, err := h.auth.Verify(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	h.session.set(token)
	h.logger.Info("session started", logging.String("username", claims.Username))

	writeJSON(w, http.StatusOK, SessionResponse{
		Authenticated: true,
		Username:      claims.Username,
		ExpiresAt:     expires,
		Token:         token,
	})
}

// HandleLogout clears the session token
// @Summary Sign out
// @Tags auth
// @Success 204
// @Router /auth/session [delete]
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if h.session != nil {
		h.session.set("")
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSession returns the signed-in user
// @Summary Get session
// @Tags auth
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /auth/session [get]
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{}
	if h.session != nil && h.auth != nil {
		if token := h.session.Token(); token != "" {
			if claims, err := h.auth.Verify(token); err == nil {
				resp.Authenticated = true
				resp.Username = claims.Username
				if claims.ExpiresAt != nil {
					resp.ExpiresAt = claims.ExpiresAt.Time
				}
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
