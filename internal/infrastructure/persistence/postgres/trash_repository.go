package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rostam/opsdesk/internal/domain"
)

// InsertTombstone records one soft-delete event.
func (s *Store) InsertTombstone(ctx context.Context, entry *domain.TrashEntry) (*domain.TrashEntry, error) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trash_entries (id, kind, entity_id, actor_id, deleted_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, string(entry.Kind), entry.EntityID, entry.ActorID, entry.DeletedAt)
	if err != nil {
		return nil, mapPgError(err, "tombstone")
	}
	return entry, nil
}

// FindTombstone retrieves a tombstone by (kind, tombstone id, actor).
func (s *Store) FindTombstone(ctx context.Context, kind domain.EntityKind, tombstoneID, actorID string) (*domain.TrashEntry, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, kind, entity_id, actor_id, deleted_at FROM trash_entries
		WHERE id = $1 AND kind = $2 AND actor_id = $3`,
		tombstoneID, string(kind), actorID)

	entry, err := scanTrashEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTombstoneNotFound, tombstoneID)
		}
		return nil, fmt.Errorf("failed to get tombstone: %w", err)
	}
	return entry, nil
}

// DeleteTombstone removes a tombstone by ID.
func (s *Store) DeleteTombstone(ctx context.Context, tombstoneID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM trash_entries WHERE id = $1`, tombstoneID)
	if err != nil {
		return fmt.Errorf("failed to delete tombstone: %w", err)
	}
	return checkRowsAffected(tag.RowsAffected(), domain.ErrTombstoneNotFound, tombstoneID)
}

// ListTombstones returns the actor's tombstones, newest first, honoring the
// optional kind and date-range filters.
func (s *Store) ListTombstones(ctx context.Context, params domain.ListTrashParams) ([]domain.TrashEntry, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, kind, entity_id, actor_id, deleted_at FROM trash_entries WHERE actor_id = $1`)
	args := []any{params.ActorID}

	if params.Kind != nil {
		args = append(args, string(*params.Kind))
		sb.WriteString(` AND kind = $` + strconv.Itoa(len(args)))
	}
	if params.DeletedAfter != nil {
		args = append(args, *params.DeletedAfter)
		sb.WriteString(` AND deleted_at >= $` + strconv.Itoa(len(args)))
	}
	if params.DeletedBefore != nil {
		args = append(args, *params.DeletedBefore)
		sb.WriteString(` AND deleted_at <= $` + strconv.Itoa(len(args)))
	}
	sb.WriteString(` ORDER BY deleted_at DESC`)

	rows, err := s.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tombstones: %w", err)
	}
	defer rows.Close()

	var entries []domain.TrashEntry
	for rows.Next() {
		entry, err := scanTrashEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tombstone: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func scanTrashEntry(row pgx.Row) (*domain.TrashEntry, error) {
	var entry domain.TrashEntry
	var kind string
	if err := row.Scan(&entry.ID, &kind, &entry.EntityID, &entry.ActorID, &entry.DeletedAt); err != nil {
		return nil, err
	}
	entry.Kind = domain.EntityKind(kind)
	return &entry, nil
}
