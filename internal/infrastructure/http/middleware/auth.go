package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rostam/opsdesk/internal/domain"
	"github.com/rostam/opsdesk/internal/infrastructure/http/response"
)

// Authenticator resolves an API key to the staff member it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*domain.Staff, error)
}

type actorContextKey struct{}

// ActorFrom returns the authenticated staff member stored by the auth
// middleware. The second return is false on routes mounted outside it.
func ActorFrom(ctx context.Context) (*domain.Staff, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(*domain.Staff)
	return actor, ok
}

// WithActor returns a context carrying the given staff member as the
// authenticated actor. Used by tests and internal callers.
func WithActor(ctx context.Context, actor *domain.Staff) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// Auth is HTTP middleware for API key authentication.
type Auth struct {
	authenticator Authenticator
}

// NewAuth creates a new auth middleware.
func NewAuth(authenticator Authenticator) *Auth {
	return &Auth{authenticator: authenticator}
}

// Validate authenticates the Authorization header and injects the
// resolved staff member into the request context.
// Expects format: "Authorization: Bearer <api-key>"
func (a *Auth) Validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			slog.WarnContext(r.Context(), "authentication failed: missing Authorization header",
				"path", r.URL.Path,
				"method", r.Method)
			response.Unauthorized(w, "missing Authorization header")
			return
		}

		apiKey, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			slog.WarnContext(r.Context(), "authentication failed: invalid Authorization header format",
				"path", r.URL.Path,
				"method", r.Method)
			response.Unauthorized(w, "invalid Authorization header format, expected: Bearer <token>")
			return
		}

		actor, err := a.authenticator.Authenticate(r.Context(), apiKey)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				slog.WarnContext(r.Context(), "authentication failed: invalid or expired API key",
					"path", r.URL.Path,
					"method", r.Method)
			} else {
				slog.ErrorContext(r.Context(), "authentication failed: unexpected error",
					"path", r.URL.Path,
					"method", r.Method,
					"error", err)
			}
			response.Unauthorized(w, "invalid or expired API key")
			return
		}

		slog.DebugContext(r.Context(), "authentication successful",
			"path", r.URL.Path,
			"method", r.Method,
			"staff_id", actor.ID)

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}
