package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rostam/opsdesk/internal/domain"
	"github.com/rostam/opsdesk/internal/infrastructure/keygen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mu       sync.Mutex
	keys     map[string]*domain.APIKey // short token -> key
	staff    map[string]*domain.Staff
	lastUsed map[string]time.Time
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		keys:     make(map[string]*domain.APIKey),
		staff:    make(map[string]*domain.Staff),
		lastUsed: make(map[string]time.Time),
	}
}

func (m *mockRepo) FindByShortToken(ctx context.Context, shortToken string) (*domain.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.keys[shortToken]
	if !ok {
		return nil, fmt.Errorf("%w: api key", domain.ErrNotFound)
	}
	copied := *key
	return &copied, nil
}

func (m *mockRepo) UpdateLastUsed(ctx context.Context, keyID string, timestamp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastUsed[keyID] = timestamp
	return nil
}

func (m *mockRepo) Create(ctx context.Context, key *domain.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key.ShortToken]; ok {
		return fmt.Errorf("duplicate short token")
	}
	copied := *key
	m.keys[key.ShortToken] = &copied
	return nil
}

func (m *mockRepo) FindStaffByID(ctx context.Context, staffID string) (*domain.Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.staff[staffID]
	if !ok {
		return nil, domain.ErrStaffNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockRepo) lastUsedOf(keyID string) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.lastUsed[keyID]
	return ts, ok
}

func mintKey(t *testing.T, repo *mockRepo, staffID string) string {
	t.Helper()
	plain, err := CreateAPIKey(context.Background(), repo, staffID, "test key", nil)
	require.NoError(t, err)
	return plain
}

func TestValidateAPIKey(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	repo.staff["staff-a"] = &domain.Staff{ID: "staff-a", Role: domain.RoleStaff}
	plain := mintKey(t, repo, "staff-a")

	a := NewAuthenticator(ctx, repo, Config{})
	defer func() { _ = a.Shutdown(context.Background()) }()

	t.Run("valid key resolves", func(t *testing.T) {
		key, err := a.ValidateAPIKey(ctx, plain)
		require.NoError(t, err)
		assert.Equal(t, "staff-a", key.StaffID)
	})

	t.Run("tampered secret is unauthorized", func(t *testing.T) {
		parts, err := keygen.ParseAPIKey(plain)
		require.NoError(t, err)
		forged := fmt.Sprintf("%s-%s-%s-%s-%s",
			parts.KeyType, parts.Service, parts.Version, parts.ShortToken,
			"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")

		_, err = a.ValidateAPIKey(ctx, forged)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("malformed key is unauthorized", func(t *testing.T) {
		_, err := a.ValidateAPIKey(ctx, "not-a-key")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unknown short token is unauthorized", func(t *testing.T) {
		parts, err := keygen.GenerateAPIKey("sk", "opsdesk", "v1")
		require.NoError(t, err)
		_, err = a.ValidateAPIKey(ctx, parts.FullKey)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestValidateAPIKeyInactiveAndExpired(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	plain := mintKey(t, repo, "staff-a")
	parts, err := keygen.ParseAPIKey(plain)
	require.NoError(t, err)

	a := NewAuthenticator(ctx, repo, Config{})
	defer func() { _ = a.Shutdown(context.Background()) }()

	repo.mu.Lock()
	repo.keys[parts.ShortToken].IsActive = false
	repo.mu.Unlock()
	_, err = a.ValidateAPIKey(ctx, plain)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	past := time.Now().UTC().Add(-time.Hour)
	repo.mu.Lock()
	repo.keys[parts.ShortToken].IsActive = true
	repo.keys[parts.ShortToken].ExpiresAt = &past
	repo.mu.Unlock()
	_, err = a.ValidateAPIKey(ctx, plain)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	repo.staff["staff-a"] = &domain.Staff{ID: "staff-a", Name: "Avery", Role: domain.RoleAdmin}
	plain := mintKey(t, repo, "staff-a")
	orphan := mintKey(t, repo, "staff-gone")

	a := NewAuthenticator(ctx, repo, Config{})
	defer func() { _ = a.Shutdown(context.Background()) }()

	staff, err := a.Authenticate(ctx, plain)
	require.NoError(t, err)
	assert.Equal(t, "staff-a", staff.ID)
	assert.Equal(t, domain.RoleAdmin, staff.Role)

	// A valid key whose staff row vanished is still unauthorized.
	_, err = a.Authenticate(ctx, orphan)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLastUsedUpdatedAsynchronously(t *testing.T) {
	ctx := context.Background()
	repo := newMockRepo()
	plain := mintKey(t, repo, "staff-a")
	parts, err := keygen.ParseAPIKey(plain)
	require.NoError(t, err)
	keyID := repo.keys[parts.ShortToken].ID

	a := NewAuthenticator(ctx, repo, Config{})

	_, err = a.ValidateAPIKey(ctx, plain)
	require.NoError(t, err)

	// Shutdown flushes the queue, so the update must be visible after it.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Shutdown(shutdownCtx))

	_, ok := repo.lastUsedOf(keyID)
	assert.True(t, ok, "last_used_at should be flushed on shutdown")
}

func TestShutdownIdempotent(t *testing.T) {
	repo := newMockRepo()
	a := NewAuthenticator(context.Background(), repo, Config{})

	require.NoError(t, a.Shutdown(context.Background()))
	require.NoError(t, a.Shutdown(context.Background()))
}

func TestCreateAPIKeyShape(t *testing.T) {
	repo := newMockRepo()
	plain := mintKey(t, repo, "staff-a")

	parts, err := keygen.ParseAPIKey(plain)
	require.NoError(t, err)
	assert.Equal(t, "sk", parts.KeyType)
	assert.Equal(t, "opsdesk", parts.Service)
	assert.Equal(t, "v1", parts.Version)

	stored := repo.keys[parts.ShortToken]
	require.NotNil(t, stored)
	assert.Equal(t, "staff-a", stored.StaffID)
	assert.NotEqual(t, parts.LongSecret, stored.LongSecretHash, "plain secret must never be stored")
	assert.Equal(t, keygen.HashSecret(parts.LongSecret), stored.LongSecretHash)
}
