package domain

import "time"

// APIKey is a stored credential bound to a staff member. Only the hash of
// the long secret is persisted; the full key is shown once at creation.
type APIKey struct {
	ID             string
	StaffID        string
	KeyType        string // "sk" for secret keys
	Service        string
	Version        string
	ShortToken     string // lookup handle, derived from the long secret
	LongSecretHash string
	Name           string
	IsActive       bool
	CreatedAt      time.Time
	ExpiresAt      *time.Time
	LastUsedAt     *time.Time
}
