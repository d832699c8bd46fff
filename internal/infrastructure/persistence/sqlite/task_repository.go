package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rostam/opsdesk/internal/domain"
)

const taskColumns = `id, requirement, contact_id, staff_id, stage, priority, finish_by,
	notes, description, team_work, rework, reject, new_update, soft_deleted,
	created_at, updated_at, version`

// CreateTask creates a new task.
func (s *Store) CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	teamWork, err := json.Marshal(t.TeamWork)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal team work: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, requirement, contact_id, staff_id, stage, priority, finish_by,
			notes, description, team_work, rework, reject, new_update, soft_deleted,
			created_at, updated_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		t.ID, t.Requirement, t.ContactID, t.StaffID, int(t.Stage), string(t.Priority),
		nullTime(t.FinishBy), t.Notes, t.Description, string(teamWork), t.Rework,
		t.Reject, t.NewUpdate, t.SoftDeleted, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.FindTaskByID(ctx, t.ID)
}

// FindTaskByID retrieves a task by its ID, soft-deleted or not.
func (s *Store) FindTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// UpdateTask applies a transition as a compare-and-swap on the stored
// version. The version guard sits in the WHERE clause, so a concurrent
// writer makes the update a no-op and surfaces as ErrVersionConflict.
func (s *Store) UpdateTask(ctx context.Context, update domain.TaskUpdate) (*domain.Task, error) {
	var updated *domain.Task

	err := s.executeInTransaction(ctx, "update_task", func(txStore *Store) error {
		t, err := txStore.FindTaskByID(ctx, update.TaskID)
		if err != nil {
			return err
		}

		if t.Version != update.ExpectedVersion {
			return fmt.Errorf("%w: task %s version %d, expected %d",
				domain.ErrVersionConflict, t.ID, t.Version, update.ExpectedVersion)
		}

		t.ApplyUpdate(update)

		teamWork, err := json.Marshal(t.TeamWork)
		if err != nil {
			return fmt.Errorf("failed to marshal team work: %w", err)
		}

		res, err := txStore.db.ExecContext(ctx, `
			UPDATE tasks SET stage = ?, notes = ?, team_work = ?, rework = ?,
				reject = ?, new_update = ?, updated_at = ?, version = version + 1
			WHERE id = ? AND version = ?`,
			int(t.Stage), t.Notes, string(teamWork), t.Rework, t.Reject, t.NewUpdate,
			t.UpdatedAt, t.ID, update.ExpectedVersion)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: task %s", domain.ErrVersionConflict, t.ID)
		}

		t.Version++
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var stage int
	var priority, teamWork string
	var finishBy sql.NullTime

	err := row.Scan(&t.ID, &t.Requirement, &t.ContactID, &t.StaffID, &stage, &priority,
		&finishBy, &t.Notes, &t.Description, &teamWork, &t.Rework, &t.Reject,
		&t.NewUpdate, &t.SoftDeleted, &t.CreatedAt, &t.UpdatedAt, &t.Version)
	if err != nil {
		return nil, err
	}

	t.Stage = domain.Stage(stage)
	t.Priority = domain.Priority(priority)
	t.FinishBy = timePtr(finishBy)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if teamWork != "" {
		if err := json.Unmarshal([]byte(teamWork), &t.TeamWork); err != nil {
			return nil, fmt.Errorf("failed to unmarshal team work: %w", err)
		}
	}
	return &t, nil
}
