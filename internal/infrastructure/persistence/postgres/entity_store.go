package postgres

import (
	"context"
	"fmt"

	"github.com/rostam/opsdesk/internal/application/trash"
	"github.com/rostam/opsdesk/internal/domain"
)

// entityStore adapts one table to the trash ledger's per-kind interface.
// Table and column names are fixed at construction, never caller input.
type entityStore struct {
	store    *Store
	table    string
	notFound error
	find     func(ctx context.Context, id string) (any, error)
}

func (e *entityStore) Find(ctx context.Context, id string) (any, error) {
	return e.find(ctx, id)
}

func (e *entityStore) SetSoftDeleted(ctx context.Context, id string, deleted bool) error {
	tag, err := e.store.db.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET soft_deleted = $2 WHERE id = $1`, e.table), id, deleted)
	if err != nil {
		return fmt.Errorf("failed to update soft delete flag: %w", err)
	}
	return checkRowsAffected(tag.RowsAffected(), e.notFound, id)
}

func (e *entityStore) HardDelete(ctx context.Context, id string) error {
	tag, err := e.store.db.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, e.table), id)
	if err != nil {
		return fmt.Errorf("failed to hard delete: %w", err)
	}
	return checkRowsAffected(tag.RowsAffected(), e.notFound, id)
}

// ownedEntityStore adds ownership reporting for tables with a staff_id
// owner column. Kinds without one stay admin-only in the ledger.
type ownedEntityStore struct {
	entityStore
}

func (e *ownedEntityStore) OwnerOf(ctx context.Context, id string) (string, error) {
	var ownerID string
	err := e.store.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT staff_id FROM %s WHERE id = $1`, e.table), id).Scan(&ownerID)
	if err != nil {
		return "", fmt.Errorf("%w: %s", e.notFound, id)
	}
	return ownerID, nil
}

// EntityStores returns the per-kind store handles to register with the
// trash ledger. Teams carry no owner, so they are admin-only to trash.
func (s *Store) EntityStores() map[domain.EntityKind]trash.EntityStore {
	owned := func(table string, notFound error, find func(ctx context.Context, id string) (any, error)) trash.EntityStore {
		return &ownedEntityStore{entityStore{store: s, table: table, notFound: notFound, find: find}}
	}

	return map[domain.EntityKind]trash.EntityStore{
		domain.KindTask: owned("tasks", domain.ErrTaskNotFound, func(ctx context.Context, id string) (any, error) {
			return s.FindTaskByID(ctx, id)
		}),
		domain.KindContact: owned("contacts", domain.ErrContactNotFound, func(ctx context.Context, id string) (any, error) {
			return s.FindContactByID(ctx, id)
		}),
		domain.KindLead: owned("leads", domain.ErrLeadNotFound, func(ctx context.Context, id string) (any, error) {
			return s.FindLeadByID(ctx, id)
		}),
		domain.KindMeeting: owned("meetings", domain.ErrNotFound, func(ctx context.Context, id string) (any, error) {
			return s.FindMeetingByID(ctx, id)
		}),
		domain.KindCall: owned("calls", domain.ErrNotFound, func(ctx context.Context, id string) (any, error) {
			return s.FindCallByID(ctx, id)
		}),
		domain.KindLeave: owned("leaves", domain.ErrLeaveNotFound, func(ctx context.Context, id string) (any, error) {
			return s.FindLeaveByID(ctx, id)
		}),
		domain.KindTeam: &entityStore{store: s, table: "teams", notFound: domain.ErrNotFound,
			find: func(ctx context.Context, id string) (any, error) {
				return s.FindTeamByID(ctx, id)
			}},
	}
}
