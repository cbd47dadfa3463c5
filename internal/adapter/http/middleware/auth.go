package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/auth"
	"github.com/iho/opsledger/internal/infrastructure/metrics"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// ActorContextKey is the context key for the authenticated actor
	ActorContextKey ContextKey = "actor"
)

// Identity headers trusted when token authentication is disabled.
const (
	EmployeeIDHeader   = "X-Employee-ID"
	EmployeeRoleHeader = "X-Employee-Role"
)

// AuthMiddleware verifies the bearer token and stores the actor it names.
func AuthMiddleware(jwtManager *auth.JWTManager, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, m, "missing_header", "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, m, "bad_format", "invalid authorization header format")
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, auth.ErrExpiredToken) {
					reason = "expired_token"
				}
				unauthorized(w, m, reason, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), claims.Actor())))
		})
	}
}

// HeaderActor takes the actor from identity headers set by a trusted proxy.
// It is used only when token authentication is disabled. Requests without
// the headers carry no actor.
func HeaderActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(EmployeeIDHeader)
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		actor := domain.Actor{
			EmployeeID: id,
			Role:       domain.Role(r.Header.Get(EmployeeRoleHeader)),
		}
		if actor.Validate() != nil {
			unauthorized(w, nil, "bad_identity", "invalid identity headers")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RequireRole rejects requests whose actor is below minRole.
func RequireRole(minRole domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				unauthorized(w, nil, "no_actor", "unauthorized")
				return
			}

			allowed := true
			switch minRole {
			case domain.RoleAdmin:
				allowed = actor.Role == domain.RoleAdmin
			case domain.RoleOperator:
				allowed = actor.Role.CanMutate()
			}
			if !allowed {
				writeJSONError(w, http.StatusForbidden, "unauthorized", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithActor stores actor in ctx.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, ActorContextKey, actor)
}

// ActorFromContext extracts the authenticated actor from context
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(ActorContextKey).(domain.Actor)
	return actor, ok
}

func unauthorized(w http.ResponseWriter, m *metrics.Metrics, reason, message string) {
	if m != nil {
		m.AuthFailures.WithLabelValues(reason).Inc()
	}
	writeJSONError(w, http.StatusUnauthorized, "unauthorized", message)
}

func writeJSONError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": kind, "message": message})
}
