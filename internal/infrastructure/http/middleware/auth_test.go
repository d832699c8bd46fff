package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rostam/opsdesk/internal/domain"
)

type stubAuthenticator struct {
	staff map[string]*domain.Staff
}

func (s *stubAuthenticator) Authenticate(_ context.Context, apiKey string) (*domain.Staff, error) {
	staff, ok := s.staff[apiKey]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return staff, nil
}

func newAuthHandler(t *testing.T) http.Handler {
	t.Helper()
	staff := &domain.Staff{ID: "staff-1", Name: "Sara", Role: domain.RoleStaff}
	auth := NewAuth(&stubAuthenticator{staff: map[string]*domain.Staff{"good-key": staff}})

	return auth.Validate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestValidateInjectsActor(t *testing.T) {
	staff := &domain.Staff{ID: "staff-1", Name: "Sara", Role: domain.RoleStaff}
	auth := NewAuth(&stubAuthenticator{staff: map[string]*domain.Staff{"good-key": staff}})

	var seen *domain.Staff
	handler := auth.Validate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		require.True(t, ok)
		seen = actor
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer good-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "staff-1", seen.ID)
}

func TestValidateRejectsMissingHeader(t *testing.T) {
	handler := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateRejectsNonBearerHeader(t *testing.T) {
	handler := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateRejectsUnknownKey(t *testing.T) {
	handler := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer bad-key")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestActorFromMissing(t *testing.T) {
	_, ok := ActorFrom(context.Background())
	assert.False(t, ok)
}
