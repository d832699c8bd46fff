package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
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

	_, err = s.db.Exec(ctx, `
		INSERT INTO tasks (id, requirement, contact_id, staff_id, stage, priority, finish_by,
			notes, description, team_work, rework, reject, new_update, soft_deleted,
			created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 1)`,
		t.ID, t.Requirement, t.ContactID, t.StaffID, int(t.Stage), string(t.Priority),
		t.FinishBy, t.Notes, t.Description, teamWork, t.Rework, t.Reject, t.NewUpdate,
		t.SoftDeleted, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, mapPgError(err, "task")
	}

	return s.FindTaskByID(ctx, t.ID)
}

// FindTaskByID retrieves a task by its ID, soft-deleted or not.
func (s *Store) FindTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	row := s.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// UpdateTask applies a transition as a compare-and-swap on the stored
// version. The row is locked, the field set applied, and the version
// bumped; a version mismatch fails with domain.ErrVersionConflict and no
// partial effects.
func (s *Store) UpdateTask(ctx context.Context, update domain.TaskUpdate) (*domain.Task, error) {
	var updated *domain.Task

	err := s.executeInTransaction(ctx, "update_task", func(txStore *Store) error {
		row := txStore.db.QueryRow(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, update.TaskID)
		t, err := scanTask(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, update.TaskID)
			}
			return fmt.Errorf("failed to get task: %w", err)
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

		tag, err := txStore.db.Exec(ctx, `
			UPDATE tasks SET stage = $2, notes = $3, team_work = $4, rework = $5,
				reject = $6, new_update = $7, updated_at = $8, version = version + 1
			WHERE id = $1`,
			t.ID, int(t.Stage), t.Notes, teamWork, t.Rework, t.Reject, t.NewUpdate, t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if err := checkRowsAffected(tag.RowsAffected(), domain.ErrTaskNotFound, t.ID); err != nil {
			return err
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

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var stage int
	var priority string
	var teamWork []byte

	err := row.Scan(&t.ID, &t.Requirement, &t.ContactID, &t.StaffID, &stage, &priority,
		&t.FinishBy, &t.Notes, &t.Description, &teamWork, &t.Rework, &t.Reject,
		&t.NewUpdate, &t.SoftDeleted, &t.CreatedAt, &t.UpdatedAt, &t.Version)
	if err != nil {
		return nil, err
	}

	t.Stage = domain.Stage(stage)
	t.Priority = domain.Priority(priority)
	if len(teamWork) > 0 {
		if err := json.Unmarshal(teamWork, &t.TeamWork); err != nil {
			return nil, fmt.Errorf("failed to unmarshal team work: %w", err)
		}
	}
	return &t, nil
}
