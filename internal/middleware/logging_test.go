package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"view-router/internal/common/logging"
)

func newLogger(t *testing.T, buf *bytes.Buffer) logging.Logger {
	t.Helper()
	cfg := logging.DefaultLogConfig()
	cfg.Level = logging.DebugLevel
	cfg.Output = buf
	logger, err := logging.NewZapLogger(cfg)
	require.NoError(t, err)
	return logger
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	router := mux.NewRouter()
	router.Use(Logging(newLogger(t, &buf)))
	router.HandleFunc("/navigation/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/navigation/7?x=1", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "HTTP request completed")
	assert.Contains(t, out, "/navigation/{id}")
	assert.Contains(t, out, "418")
	assert.Contains(t, out, "x=1")
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	router := mux.NewRouter()
	router.Use(Recover(newLogger(t, &buf)))
	router.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "handler panicked")
}
