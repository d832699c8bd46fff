package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rostam/opsdesk/internal/domain"
)

// FindByShortToken retrieves an API key by its short token for validation.
func (s *Store) FindByShortToken(ctx context.Context, shortToken string) (*domain.APIKey, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, staff_id, key_type, service, version, short_token, long_secret_hash,
			name, is_active, created_at, expires_at, last_used_at
		FROM api_keys WHERE short_token = ?`, shortToken)

	var key domain.APIKey
	var expiresAt, lastUsedAt sql.NullTime
	err := row.Scan(&key.ID, &key.StaffID, &key.KeyType, &key.Service, &key.Version,
		&key.ShortToken, &key.LongSecretHash, &key.Name, &key.IsActive,
		&key.CreatedAt, &expiresAt, &lastUsedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: API key", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get API key: %w", err)
	}
	key.ExpiresAt = timePtr(expiresAt)
	key.LastUsedAt = timePtr(lastUsedAt)
	return &key, nil
}

// UpdateLastUsed updates the last used timestamp for an API key.
// Only moves the timestamp forward; an older timestamp is an idempotent
// success.
func (s *Store) UpdateLastUsed(ctx context.Context, keyID string, timestamp time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE api_keys SET last_used_at = ?
		WHERE id = ? AND (last_used_at IS NULL OR last_used_at < ?)`,
		timestamp, keyID, timestamp)
	if err != nil {
		return fmt.Errorf("failed to update last used: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM api_keys WHERE id = ?)`, keyID).Scan(&exists); err != nil {
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
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_keys (id, staff_id, key_type, service, version, short_token,
			long_secret_hash, name, is_active, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key.ID, key.StaffID, key.KeyType, key.Service, key.Version, key.ShortToken,
		key.LongSecretHash, key.Name, key.IsActive, key.CreatedAt, nullTime(key.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}
	return nil
}
