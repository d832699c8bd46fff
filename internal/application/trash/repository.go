package trash

import (
	"context"

	"github.com/rostam/opsdesk/internal/domain"
)

// Repository defines storage operations for tombstones.
type Repository interface {
	// InsertTombstone records one soft-delete event.
	// Returns the stored entry with its generated ID.
	InsertTombstone(ctx context.Context, entry *domain.TrashEntry) (*domain.TrashEntry, error)

	// FindTombstone retrieves a tombstone by (kind, tombstone id, actor).
	// Returns domain.ErrTombstoneNotFound if no entry matches all three.
	FindTombstone(ctx context.Context, kind domain.EntityKind, tombstoneID, actorID string) (*domain.TrashEntry, error)

	// DeleteTombstone removes a tombstone by ID.
	// Returns domain.ErrTombstoneNotFound if it doesn't exist.
	DeleteTombstone(ctx context.Context, tombstoneID string) error

	// ListTombstones returns the actor's tombstones, newest first,
	// honoring the optional kind and date-range filters.
	ListTombstones(ctx context.Context, params domain.ListTrashParams) ([]domain.TrashEntry, error)
}

// EntityStore is the per-kind store handle the ledger dispatches through.
// One mechanism serves N unrelated entity kinds: a new kind plugs into
// trash by registering one of these at startup, never by duplicating
// delete/restore/purge logic.
type EntityStore interface {
	// Find returns the live record for hydration.
	// Returns an error wrapping domain.ErrNotFound (or a kind-specific
	// not-found sentinel) when the record is absent.
	Find(ctx context.Context, id string) (any, error)

	// SetSoftDeleted flips the record's soft-delete flag.
	SetSoftDeleted(ctx context.Context, id string, deleted bool) error

	// HardDelete permanently removes the record. Unrecoverable.
	HardDelete(ctx context.Context, id string) error
}

// OwnershipReporter is an optional EntityStore upgrade. Kinds that have a
// per-record owner implement it so non-admin actors can trash their own
// records; kinds without it are admin-only to trash.
type OwnershipReporter interface {
	OwnerOf(ctx context.Context, id string) (string, error)
}

// AccessPolicy resolves a caller to a role.
type AccessPolicy interface {
	RoleOf(ctx context.Context, staffID string) (domain.Role, error)
}
