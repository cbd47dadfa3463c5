package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		body      string
		wantLevel string
		wantRoute string
	}{
		{"success logs at info", "/api/v1/entries/TXN-1", http.StatusOK, `{"id":"TXN-1"}`, "info", "/api/v1/entries/{id}"},
		{"client error logs at warn", "/api/v1/entries/TXN-2", http.StatusConflict, "", "warn", "/api/v1/entries/{id}"},
		{"server error logs at error", "/api/v1/entries/TXN-3", http.StatusInternalServerError, "", "error", "/api/v1/entries/{id}"},
		{"health check logs at debug", "/health", http.StatusOK, "ok", "debug", "/health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

			handler := func(w http.ResponseWriter, _ *http.Request) {
				if tt.status != http.StatusOK {
					w.WriteHeader(tt.status)
				}
				_, _ = w.Write([]byte(tt.body))
			}

			r := chi.NewRouter()
			r.Use(RequestLogger(logger))
			r.Get("/api/v1/entries/{id}", handler)
			r.Get("/health", handler)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set(IdempotencyKeyHeader, "key-1")
			r.ServeHTTP(httptest.NewRecorder(), req)

			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, tt.wantLevel, record["level"])
			assert.Equal(t, tt.path, record["path"])
			assert.Equal(t, tt.wantRoute, record["route"])
			assert.EqualValues(t, tt.status, record["status"])
			assert.EqualValues(t, len(tt.body), record["bytes"])
			assert.Equal(t, "key-1", record["idempotency_key"])
		})
	}
}

func TestRequestLogger_QuietPathsHiddenAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Empty(t, buf.String())
}
