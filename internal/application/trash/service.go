package trash

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rostam/opsdesk/internal/domain"
)

// Ledger is the generic archive component. It records a tombstone whenever
// any entity is soft-deleted, independent of entity schema, and owns the
// restore and purge paths. Entity kinds are dispatched through a resolver
// map populated once at startup; the ledger itself never embeds
// entity-specific logic.
type Ledger struct {
	repo   Repository
	access AccessPolicy
	stores map[domain.EntityKind]EntityStore
}

// NewLedger creates a ledger with an empty resolver map.
func NewLedger(repo Repository, access AccessPolicy) *Ledger {
	return &Ledger{
		repo:   repo,
		access: access,
		stores: make(map[domain.EntityKind]EntityStore),
	}
}

// Register adds a store handle for one entity kind. Called during wiring,
// before the ledger serves requests; not safe for concurrent use after.
func (l *Ledger) Register(kind domain.EntityKind, store EntityStore) {
	l.stores[kind] = store
}

func (l *Ledger) resolve(kind domain.EntityKind) (EntityStore, error) {
	store, ok := l.stores[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrKindNotRegistered, kind)
	}
	return store, nil
}

// SoftDelete flags the record deleted and writes a tombstone.
//
// Two sequential steps with explicit ordering: the flag flip happens first,
// so a failed flip never leaves an orphan tombstone referencing a record
// that was never actually flagged. Admins may trash anything; other actors
// only records they own (kinds without an owner are admin-only).
func (l *Ledger) SoftDelete(ctx context.Context, actorID string, kind domain.EntityKind, entityID string) (*domain.TrashEntry, error) {
	store, err := l.resolve(kind)
	if err != nil {
		return nil, err
	}

	if _, err := store.Find(ctx, entityID); err != nil {
		return nil, err
	}

	if err := l.authorize(ctx, actorID, store, entityID); err != nil {
		return nil, err
	}

	if err := store.SetSoftDeleted(ctx, entityID, true); err != nil {
		return nil, fmt.Errorf("failed to flag %s %s: %w", kind, entityID, err)
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	entry, err := l.repo.InsertTombstone(ctx, &domain.TrashEntry{
		ID:        idObj.String(),
		Kind:      kind,
		EntityID:  entityID,
		ActorID:   actorID,
		DeletedAt: time.Now().UTC(),
	})
	if err != nil {
		// The record is flagged but untracked. Surface the failure; the
		// gap is accepted rather than silently masked.
		slog.ErrorContext(ctx, "record flagged but tombstone write failed",
			"kind", kind,
			"entity_id", entityID,
			"actor_id", actorID,
			"error", err)
		return nil, fmt.Errorf("failed to write tombstone: %w", err)
	}

	return entry, nil
}

// ListTrash returns the actor's tombstones hydrated with the live
// underlying records. A tombstone whose record has since been hard-deleted
// by another path is surfaced with a nil payload rather than omitted.
func (l *Ledger) ListTrash(ctx context.Context, params domain.ListTrashParams) ([]domain.HydratedTrashEntry, error) {
	entries, err := l.repo.ListTombstones(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list tombstones: %w", err)
	}

	hydrated := make([]domain.HydratedTrashEntry, 0, len(entries))
	for _, entry := range entries {
		h := domain.HydratedTrashEntry{Entry: entry}

		store, err := l.resolve(entry.Kind)
		if err != nil {
			slog.WarnContext(ctx, "tombstone references unregistered kind",
				"kind", entry.Kind,
				"tombstone_id", entry.ID)
		} else {
			payload, err := store.Find(ctx, entry.EntityID)
			switch {
			case err == nil:
				h.Payload = payload
			case isNotFound(err):
				// Dangling tombstone: keep it visible for audit.
			default:
				return nil, fmt.Errorf("failed to hydrate %s %s: %w", entry.Kind, entry.EntityID, err)
			}
		}

		hydrated = append(hydrated, h)
	}

	return hydrated, nil
}

// Restore deletes the tombstone and flips the record's soft-delete flag
// back off. Tombstone removal comes first: a crash mid-operation leaves
// the record soft-deleted but untracked, which is an accepted gap.
func (l *Ledger) Restore(ctx context.Context, actorID string, kind domain.EntityKind, tombstoneID string) error {
	entry, store, err := l.lookup(ctx, actorID, kind, tombstoneID)
	if err != nil {
		return err
	}

	if err := l.repo.DeleteTombstone(ctx, entry.ID); err != nil {
		return fmt.Errorf("failed to delete tombstone: %w", err)
	}

	if err := store.SetSoftDeleted(ctx, entry.EntityID, false); err != nil {
		slog.ErrorContext(ctx, "tombstone removed but unflag failed; record remains soft-deleted and untracked",
			"kind", kind,
			"entity_id", entry.EntityID,
			"error", err)
		return fmt.Errorf("failed to restore %s %s: %w", kind, entry.EntityID, err)
	}

	return nil
}

// Purge deletes the tombstone and hard-deletes the underlying record.
// Once purged, the record is unrecoverable.
func (l *Ledger) Purge(ctx context.Context, actorID string, kind domain.EntityKind, tombstoneID string) error {
	entry, store, err := l.lookup(ctx, actorID, kind, tombstoneID)
	if err != nil {
		return err
	}

	if err := l.repo.DeleteTombstone(ctx, entry.ID); err != nil {
		return fmt.Errorf("failed to delete tombstone: %w", err)
	}

	if err := store.HardDelete(ctx, entry.EntityID); err != nil {
		slog.ErrorContext(ctx, "tombstone removed but hard delete failed",
			"kind", kind,
			"entity_id", entry.EntityID,
			"error", err)
		return fmt.Errorf("failed to purge %s %s: %w", kind, entry.EntityID, err)
	}

	return nil
}

// lookup resolves the tombstone, the store, and verifies the underlying
// record still exists. Restore and purge on a missing record fail rather
// than silently succeed.
func (l *Ledger) lookup(ctx context.Context, actorID string, kind domain.EntityKind, tombstoneID string) (*domain.TrashEntry, EntityStore, error) {
	entry, err := l.repo.FindTombstone(ctx, kind, tombstoneID, actorID)
	if err != nil {
		return nil, nil, err
	}

	store, err := l.resolve(kind)
	if err != nil {
		return nil, nil, err
	}

	if _, err := store.Find(ctx, entry.EntityID); err != nil {
		if isNotFound(err) {
			return nil, nil, fmt.Errorf("%w: underlying %s %s is gone", domain.ErrNotFound, kind, entry.EntityID)
		}
		return nil, nil, err
	}

	return entry, store, nil
}

func (l *Ledger) authorize(ctx context.Context, actorID string, store EntityStore, entityID string) error {
	role, err := l.access.RoleOf(ctx, actorID)
	if err != nil {
		return err
	}
	if role == domain.RoleAdmin {
		return nil
	}

	reporter, ok := store.(OwnershipReporter)
	if !ok {
		return fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}

	owner, err := reporter.OwnerOf(ctx, entityID)
	if err != nil {
		return err
	}
	if owner != actorID {
		return fmt.Errorf("%w: record belongs to another staff member", domain.ErrForbidden)
	}
	return nil
}

// isNotFound matches the not-found family across entity kinds.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrTaskNotFound) ||
		errors.Is(err, domain.ErrContactNotFound) ||
		errors.Is(err, domain.ErrLeadNotFound) ||
		errors.Is(err, domain.ErrLeaveNotFound)
}
