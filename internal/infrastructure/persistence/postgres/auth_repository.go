package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rostam/opsdesk/internal/domain"
)

// FindByShortToken retrieves an API key by its short token for validation.
func (s *Store) FindByShortToken(ctx context.Context, shortToken string) (*domain.APIKey, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, staff_id, key_type, service, version, short_token, long_secret_hash,
			name, is_active, created_at, expires_at, last_used_at
		FROM api_keys WHERE short_token = $1`, shortToken)

	var key domain.APIKey
	err := row.Scan(&key.ID, &key.StaffID, &key.KeyType, &key.Service, &key.Version,
		&key.ShortToken, &key.LongSecretHash, &key.Name, &key.IsActive,
		&key.CreatedAt, &key.ExpiresAt, &key.LastUsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: API key", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}
	return &key, nil
}

// UpdateLastUsed updates the last used timestamp for an API key.
// Only moves the timestamp forward; an older timestamp is an idempotent
// success. Returns ErrNotFound if the key doesn't exist.
func (s *Store) UpdateLastUsed(ctx context.Context, keyID string, timestamp time.Time) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE api_keys SET last_used_at = $2
		WHERE id = $1 AND (last_used_at IS NULL OR last_used_at < $2)`,
		keyID, timestamp)
	if err != nil {
		return fmt.Errorf("failed to update last used: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the key doesn't exist or the timestamp wasn't later.
		var exists bool
		if err := s.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM api_keys WHERE id = $1)`, keyID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check key existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: API key", domain.ErrNotFound)
		}
	}
	return nil
}

// Create persists a new API key.
func (s *Store) Create(ctx context.Context, key *domain.APIKey) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO api_keys (id, staff_id, key_type, service, version, short_token,
			long_secret_hash, name, is_active, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		key.ID, key.StaffID, key.KeyType, key.Service, key.Version, key.ShortToken,
		key.LongSecretHash, key.Name, key.IsActive, key.CreatedAt, key.ExpiresAt)
	if err != nil {
		return mapPgError(err, "API key")
	}
	return nil
}
