package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"civic-registry/internal/domain"
)

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) Result {
	t.Helper()
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestRecoveryWritesInternalError(t *testing.T) {
	h := Recovery(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	res := decodeResult(t, rec)
	assert.False(t, res.Success)
	assert.Equal(t, "Internal server error", res.Message)
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "req-42", seen)
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	h := CORS([]string{"http://allowed.test"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	wild := CORS([]string{"*"})(http.NotFoundHandler())
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Method = http.MethodOptions
	rec = httptest.NewRecorder()
	wild.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://evil.test", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid", domain.Invalid("Bad input"), http.StatusBadRequest, "Bad input"},
		{"conflict", domain.NewError(domain.CodeConflict, "Taken"), http.StatusBadRequest, "Taken"},
		{"unauthorized", domain.Unauthorized("Nope"), http.StatusUnauthorized, "Nope"},
		{"forbidden", domain.Forbidden("Access denied"), http.StatusForbidden, "Access denied"},
		{"not found", domain.NotFound("Person not found in database"), http.StatusNotFound, "Person not found in database"},
		{"rate limited", domain.NewError(domain.CodeRateLimited, "Slow down"), http.StatusTooManyRequests, "Slow down"},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), zap.NewNop(), tt.err)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeResult(t, rec).Message)
		})
	}
}

func TestMustCallerWithoutAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	_, ok := mustCaller(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access denied. User not authenticated.", decodeResult(t, rec).Message)
}

func TestAccessLogScopesRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := RequestID(AccessLog(zap.New(core), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, zap.NewNop(), errors.New("connection refused"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/people", nil)
	req.Header.Set("X-Request-ID", "req-9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	failed := logs.FilterMessage("Request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "req-9", failed[0].ContextMap()["request_id"])
	assert.Equal(t, "/api/people", failed[0].ContextMap()["path"])

	access := logs.FilterMessage("HTTP request").All()
	require.Len(t, access, 1)
	assert.EqualValues(t, http.StatusInternalServerError, access[0].ContextMap()["status"])
	assert.Equal(t, "req-9", access[0].ContextMap()["request_id"])
}
