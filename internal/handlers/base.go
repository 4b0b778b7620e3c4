package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"view-router/internal/common/errors"
	"view-router/internal/common/logging"
	"view-router/internal/filter"
	"view-router/internal/navigation"
	"view-router/internal/tracker"
)

// navigateTimeout bounds how long a request waits for its navigation.
const navigateTimeout = 10 * time.Second

// History is the browser-style history the adapter drives.
type History interface {
	navigation.History
	Back() (string, bool)
	Forward() (string, bool)
	Entries() []string
}

// HealthCheck reports the health of one dependency.
type HealthCheck func() error

type Handlers struct {
	router   *navigation.Router
	history  History
	recorder tracker.Recorder
	logger   logging.Logger

	auth    *filter.AuthFilter
	session *Session
	screen  func() interface{}
	checks  map[string]HealthCheck
}

func New(router *navigation.Router, history History, recorder tracker.Recorder, logger logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		router:   router,
		history:  history,
		recorder: recorder,
		logger:   logger.WithFields(logging.String("component", "http")),
		checks:   make(map[string]HealthCheck),
	}
}

// SetAuth enables the session endpoints. auth signs the tokens stored in
// session; session is the token source of the same filter.
func (h *Handlers) SetAuth(auth *filter.AuthFilter, session *Session) {
	h.auth = auth
	h.session = session
}

// SetScreen sets the function whose result GetCurrent reports as the
// rendered screen.
func (h *Handlers) SetScreen(fn func() interface{}) {
	h.screen = fn
}

// AddHealthCheck registers a named dependency check for HealthCheck.
func (h *Handlers) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Type: string(errors.GetType(err))})
}

func decode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.ValidationError("invalid request body: " + err.Error())
	}
	return nil
}
