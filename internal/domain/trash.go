package domain

import "time"

// TrashEntry is a tombstone recording that some entity instance was
// soft-deleted, who did it, and when. One tombstone exists per soft-delete
// event. Deleting the tombstone and unflagging the record is a restore;
// deleting the tombstone and the record is a purge.
type TrashEntry struct {
	ID        string
	Kind      EntityKind
	EntityID  string
	ActorID   string
	DeletedAt time.Time // UTC; rendered in the actor's calendar by the UI
}

// ListTrashParams filters an actor's trash listing.
type ListTrashParams struct {
	ActorID string

	// Optional filters (nil = no filter applied)
	Kind          *EntityKind
	DeletedAfter  *time.Time
	DeletedBefore *time.Time
}

// HydratedTrashEntry pairs a tombstone with the live underlying record so
// the caller sees both when/why it was deleted and what was deleted.
//
// Payload is nil when the underlying record has been hard-deleted by
// another path. Dangling tombstones are surfaced, not omitted: visibility
// into them is intentional for audit.
type HydratedTrashEntry struct {
	Entry   TrashEntry
	Payload any
}
