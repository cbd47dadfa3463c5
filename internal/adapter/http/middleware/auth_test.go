package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/auth"
	"github.com/iho/opsledger/internal/infrastructure/metrics"
)

func captureActor(got *domain.Actor, seen *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *seen = ActorFromContext(r.Context())
	})
}

func TestAuthMiddleware_SetsActorFromToken(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	want := domain.Actor{EmployeeID: "emp-1", Role: domain.RoleOperator}
	token, err := manager.Generate(want)
	require.NoError(t, err)

	var got domain.Actor
	var seen bool
	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	AuthMiddleware(manager, nil)(captureActor(&got, &seen)).ServeHTTP(rr, req)

	require.True(t, seen)
	assert.Equal(t, want, got)
}

func TestAuthMiddleware_RejectsBadCredentials(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)

	tests := []struct {
		name   string
		header string
		reason string
	}{
		{"missing header", "", "missing_header"},
		{"wrong scheme", "Basic abc", "bad_format"},
		{"garbage token", "Bearer not-a-token", "invalid_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewWithRegistry(prometheus.NewRegistry())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			AuthMiddleware(manager, m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatalf("handler must not run")
			})).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthFailures.WithLabelValues(tt.reason)))
		})
	}
}

func TestHeaderActor(t *testing.T) {
	var got domain.Actor
	var seen bool

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(EmployeeIDHeader, "emp-9")
	req.Header.Set(EmployeeRoleHeader, "admin")
	rr := httptest.NewRecorder()
	HeaderActor(captureActor(&got, &seen)).ServeHTTP(rr, req)

	require.True(t, seen)
	assert.Equal(t, domain.Actor{EmployeeID: "emp-9", Role: domain.RoleAdmin}, got)

	seen = false
	rr = httptest.NewRecorder()
	HeaderActor(captureActor(&got, &seen)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, seen, "no headers means no actor")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(EmployeeIDHeader, "emp-9")
	req.Header.Set(EmployeeRoleHeader, "root")
	rr = httptest.NewRecorder()
	HeaderActor(captureActor(&got, &seen)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		actor    *domain.Actor
		min      domain.Role
		expected int
	}{
		{"no actor", nil, domain.RoleViewer, http.StatusUnauthorized},
		{"viewer on operator route", &domain.Actor{EmployeeID: "e", Role: domain.RoleViewer}, domain.RoleOperator, http.StatusForbidden},
		{"operator on operator route", &domain.Actor{EmployeeID: "e", Role: domain.RoleOperator}, domain.RoleOperator, http.StatusOK},
		{"operator on admin route", &domain.Actor{EmployeeID: "e", Role: domain.RoleOperator}, domain.RoleAdmin, http.StatusForbidden},
		{"admin on admin route", &domain.Actor{EmployeeID: "e", Role: domain.RoleAdmin}, domain.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.actor != nil {
				req = req.WithContext(WithActor(req.Context(), *tt.actor))
			}
			rr := httptest.NewRecorder()

			RequireRole(tt.min)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rr, req)

			assert.Equal(t, tt.expected, rr.Code)
		})
	}
}
