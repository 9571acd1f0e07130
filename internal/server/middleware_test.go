package server

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/items/internal/logging"
)

func newTestLogger(w io.Writer) *slog.Logger {
	return logging.New(logging.Config{Level: logging.LevelDebug, Format: logging.FormatText, Output: w})
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	srv, _ := helperServer(t)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/items", "")
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestAccessLog(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := New(helperStore(t), newTestLogger(&buf), Options{}).Handler()

	do(t, h, http.MethodGet, "/api/items/999", "")

	assert.Contains(t, buf.String(), "method=GET")
	assert.Contains(t, buf.String(), "path=/api/items/999")
	assert.Contains(t, buf.String(), "status=404")
}

func TestCORS(t *testing.T) {
	t.Parallel()

	t.Run("allows all by default", func(t *testing.T) {
		t.Parallel()
		srv, _ := helperServer(t)
		rec := do(t, srv.Handler(), http.MethodGet, "/api/items", "")
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		t.Parallel()
		srv, _ := helperServer(t)
		req := httptest.NewRequest(http.MethodOptions, "/api/items/1", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
	})

	t.Run("bare options", func(t *testing.T) {
		t.Parallel()
		srv, _ := helperServer(t)
		rec := do(t, srv.Handler(), http.MethodOptions, "/api/items", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("explicit origins", func(t *testing.T) {
		t.Parallel()
		h := New(helperStore(t), nil, Options{CORSOrigins: []string{"http://app.local"}}).Handler()

		req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.Header.Set("Origin", "http://app.local")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "http://app.local", rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/api/items", nil)
		req.Header.Set("Origin", "http://evil.local")
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRecoverer(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), recoverer(newTestLogger(&buf)))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "boom")
}

func TestKindStatusCodes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusNotFound, KindNotFound.StatusCode())
	assert.Equal(t, http.StatusBadRequest, KindValidation.StatusCode())
	assert.Equal(t, http.StatusInternalServerError, KindStorage.StatusCode())
}
