package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler()

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return nil }}
	down := HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return errors.New("connection refused") }}

	tests := []struct {
		name   string
		checks []HealthCheck
		want   int
		status string
	}{
		{"no dependencies", nil, http.StatusOK, "ready"},
		{"all healthy", []HealthCheck{ok}, http.StatusOK, "ready"},
		{"one down", []HealthCheck{ok, down}, http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.checks...)

			rec := httptest.NewRecorder()
			h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			var resp map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["status"] != tt.status {
				t.Fatalf("expected status %s, got %s", tt.status, resp["status"])
			}
			if len(tt.checks) == 2 && (resp["postgres"] != "ok" || resp["redis"] != "connection refused") {
				t.Fatalf("unexpected check results: %v", resp)
			}
		})
	}
}
