package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rostam/opsdesk/internal/domain"
	"github.com/rostam/opsdesk/internal/ptr"
)

// Service owns the task lifecycle state machine: stage progression, the
// rework and reject flags, and team hand-off bookkeeping.
type Service struct {
	repo     Repository
	access   AccessPolicy
	teams    TeamMembership
	notifier Notifier
}

// NewService creates a new task lifecycle service.
func NewService(repo Repository, access AccessPolicy, teams TeamMembership, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		access:   access,
		teams:    teams,
		notifier: notifier,
	}
}

// CreateTaskParams carries the caller-supplied fields for a new task.
type CreateTaskParams struct {
	Requirement string
	Priority    string
	FinishBy    *time.Time
	Description string
	Notes       string
}

// CreateTask creates a task at stage "Not Started" against a contact owned
// by ownerID. Ownership is the precondition, not mere existence: a contact
// belonging to someone else is reported as not found.
func (s *Service) CreateTask(ctx context.Context, ownerID, contactID string, params CreateTaskParams) (*domain.Task, error) {
	requirement := strings.TrimSpace(params.Requirement)
	if requirement == "" {
		return nil, domain.ErrRequirementRequired
	}

	priority, err := domain.NewPriority(params.Priority)
	if err != nil {
		return nil, err
	}

	contact, err := s.repo.FindContactByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact.StaffID != ownerID || contact.SoftDeleted {
		return nil, fmt.Errorf("%w: %s", domain.ErrContactNotFound, contactID)
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:          idObj.String(),
		Requirement: requirement,
		ContactID:   contactID,
		StaffID:     ownerID,
		Stage:       domain.StageNotStarted,
		Priority:    priority,
		FinishBy:    params.FinishBy,
		Notes:       params.Notes,
		Description: params.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.repo.CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return created, nil
}

// GetTask retrieves an active (non-soft-deleted) task by ID.
func (s *Service) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.findActive(ctx, id)
}

// AdvanceStage moves a task to the requested stage.
//
// The owner may set any stage and rewrite the notes field. A non-owner must
// share a team with the owner; their edit sets the stage but records the
// notes as an appended teamWork entry, leaving the owner's notes untouched.
// Stage moves through this path are not required to be forward-only.
func (s *Service) AdvanceStage(ctx context.Context, taskID, callerID string, stage domain.Stage, notes string) (*domain.Task, error) {
	if _, err := domain.NewStage(int(stage)); err != nil {
		return nil, err
	}

	task, err := s.findActive(ctx, taskID)
	if err != nil {
		return nil, err
	}

	update := domain.TaskUpdate{
		TaskID:          task.ID,
		ExpectedVersion: task.Version,
		Stage:           &stage,
	}

	if callerID == task.StaffID {
		update.Notes = &notes
	} else {
		shared, err := s.teams.SharesTeam(ctx, task.StaffID, callerID)
		if err != nil {
			return nil, fmt.Errorf("failed to check team membership: %w", err)
		}
		if !shared {
			return nil, fmt.Errorf("%w: caller is neither owner nor teammate", domain.ErrForbidden)
		}

		collaborator, err := s.teams.FindStaffByID(ctx, callerID)
		if err != nil {
			return nil, err
		}

		update.AppendTeamWork = &domain.TeamWorkEntry{
			Date:      time.Now().UTC(),
			StaffID:   collaborator.ID,
			StaffName: collaborator.Name,
			Stage:     stage,
			Notes:     notes,
		}
	}

	return s.repo.UpdateTask(ctx, update)
}

// AdminOverrideStage is the admin stage override. A completed task is
// unconditionally reset to Review regardless of the requested target:
// completed work sent back for revision. Any other stage is set as
// requested and clears an outstanding rework flag.
func (s *Service) AdminOverrideStage(ctx context.Context, taskID, callerID string, requested domain.Stage) (*domain.Task, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	if _, err := domain.NewStage(int(requested)); err != nil {
		return nil, err
	}

	task, err := s.findActive(ctx, taskID)
	if err != nil {
		return nil, err
	}

	update := domain.TaskUpdate{
		TaskID:          task.ID,
		ExpectedVersion: task.Version,
	}

	if task.Stage == domain.StageCompleted {
		update.Stage = ptr.To(domain.StageReview)
	} else {
		update.Stage = &requested
		update.Rework = ptr.To(false)
	}

	updated, err := s.repo.UpdateTask(ctx, update)
	if err != nil {
		return nil, err
	}

	s.enqueue(ctx, updated.StaffID, "task.stage_override", map[string]any{
		"task_id": updated.ID,
		"stage":   int(updated.Stage),
	})

	return updated, nil
}

// ToggleRework flips the admin rework flag. Setting it forces the owner's
// newUpdate flag off in the same single-row update: a task re-flagged for
// rework cannot simultaneously claim a fresh update.
func (s *Service) ToggleRework(ctx context.Context, taskID, callerID string) (*domain.Task, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	task, err := s.findActive(ctx, taskID)
	if err != nil {
		return nil, err
	}

	next := !task.Rework
	update := domain.TaskUpdate{
		TaskID:          task.ID,
		ExpectedVersion: task.Version,
		Rework:          &next,
	}
	if next {
		update.NewUpdate = ptr.To(false)
	}

	updated, err := s.repo.UpdateTask(ctx, update)
	if err != nil {
		return nil, err
	}

	if next {
		s.enqueue(ctx, updated.StaffID, "task.rework", map[string]any{
			"task_id": updated.ID,
		})
	}

	return updated, nil
}

// SetReject sets or clears the rejection audit flag. Flagging a task
// rejected requires it to be at Completed at the moment of the toggle;
// clearing is always legal. Rejection is orthogonal to stage, not a stage.
func (s *Service) SetReject(ctx context.Context, taskID, callerID string, reject bool) (*domain.Task, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	task, err := s.findActive(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if reject && task.Stage != domain.StageCompleted {
		return nil, fmt.Errorf("%w: task must be completed before rejection", domain.ErrInvalidState)
	}

	updated, err := s.repo.UpdateTask(ctx, domain.TaskUpdate{
		TaskID:          task.ID,
		ExpectedVersion: task.Version,
		Reject:          &reject,
	})
	if err != nil {
		return nil, err
	}

	if reject {
		s.enqueue(ctx, updated.StaffID, "task.reject", map[string]any{
			"task_id": updated.ID,
		})
	}

	return updated, nil
}

// ToggleNewUpdate flips the owner's self-flag announcing output worth
// re-review. Owner only: admins and teammates are both refused.
func (s *Service) ToggleNewUpdate(ctx context.Context, taskID, callerID string) (*domain.Task, error) {
	task, err := s.findActive(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if callerID != task.StaffID {
		return nil, fmt.Errorf("%w: only the task owner may flag updates", domain.ErrForbidden)
	}

	next := !task.NewUpdate
	return s.repo.UpdateTask(ctx, domain.TaskUpdate{
		TaskID:          task.ID,
		ExpectedVersion: task.Version,
		NewUpdate:       &next,
	})
}

// findActive loads a task and hides soft-deleted rows from pipeline
// operations. Soft-deleted tasks remain addressable through trash only.
func (s *Service) findActive(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.repo.FindTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.SoftDeleted {
		return nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, taskID)
	}
	return task, nil
}

func (s *Service) requireAdmin(ctx context.Context, callerID string) error {
	role, err := s.access.RoleOf(ctx, callerID)
	if err != nil {
		return err
	}
	if role != domain.RoleAdmin {
		return fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	return nil
}

// enqueue records a notification for async delivery. Failures are logged
// and swallowed: notification delivery must never fail the owning mutation.
func (s *Service) enqueue(ctx context.Context, recipientID, kind string, payload map[string]any) {
	if s.notifier == nil {
		return
	}

	n := &domain.Notification{
		RecipientID: recipientID,
		Kind:        kind,
		Payload:     payload,
		Status:      domain.NotificationPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.notifier.Enqueue(ctx, n); err != nil {
		slog.WarnContext(ctx, "failed to enqueue notification",
			"kind", kind,
			"recipient_id", recipientID,
			"error", err)
	}
}
