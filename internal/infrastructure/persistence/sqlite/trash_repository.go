package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rostam/opsdesk/internal/domain"
)

// InsertTombstone records one soft-delete event.
func (s *Store) InsertTombstone(ctx context.Context, entry *domain.TrashEntry) (*domain.TrashEntry, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trash_entries (id, kind, entity_id, actor_id, deleted_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ID, string(entry.Kind), entry.EntityID, entry.ActorID, entry.DeletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tombstone: %w", err)
	}
	return entry, nil
}

// FindTombstone retrieves a tombstone by (kind, tombstone id, actor).
func (s *Store) FindTombstone(ctx context.Context, kind domain.EntityKind, tombstoneID, actorID string) (*domain.TrashEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, entity_id, actor_id, deleted_at FROM trash_entries
		WHERE id = ? AND kind = ? AND actor_id = ?`,
		tombstoneID, string(kind), actorID)

	entry, err := scanTrashEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTombstoneNotFound, tombstoneID)
		}
		return nil, fmt.Errorf("failed to get tombstone: %w", err)
	}
	return entry, nil
}

// DeleteTombstone removes a tombstone by ID.
func (s *Store) DeleteTombstone(ctx context.Context, tombstoneID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trash_entries WHERE id = ?`, tombstoneID)
	if err != nil {
		return fmt.Errorf("failed to delete tombstone: %w", err)
	}
	return checkResult(res, domain.ErrTombstoneNotFound, tombstoneID)
}

// ListTombstones returns the actor's tombstones, newest first, honoring the
// optional kind and date-range filters.
func (s *Store) ListTombstones(ctx context.Context, params domain.ListTrashParams) ([]domain.TrashEntry, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, kind, entity_id, actor_id, deleted_at FROM trash_entries WHERE actor_id = ?`)
	args := []any{params.ActorID}

	if params.Kind != nil {
		sb.WriteString(` AND kind = ?`)
		args = append(args, string(*params.Kind))
	}
	if params.DeletedAfter != nil {
		sb.WriteString(` AND deleted_at >= ?`)
		args = append(args, *params.DeletedAfter)
	}
	if params.DeletedBefore != nil {
		sb.WriteString(` AND deleted_at <= ?`)
		args = append(args, *params.DeletedBefore)
	}
	sb.WriteString(` ORDER BY deleted_at DESC`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tombstones: %w", err)
	}
	defer func() { _ = rows.Close() }()

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

func scanTrashEntry(row rowScanner) (*domain.TrashEntry, error) {
	var entry domain.TrashEntry
	var kind string
	if err := row.Scan(&entry.ID, &kind, &entry.EntityID, &entry.ActorID, &entry.DeletedAt); err != nil {
		return nil, err
	}
	entry.Kind = domain.EntityKind(kind)
	entry.DeletedAt = entry.DeletedAt.UTC()
	return &entry, nil
}
