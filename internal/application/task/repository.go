package task

import (
	"context"

	"github.com/rostam/opsdesk/internal/domain"
)

// Repository defines storage operations for the task pipeline.
// All create/update operations return the entity as persisted, including version.
type Repository interface {
	// CreateTask creates a new task.
	// Returns the created task with version populated by the persistence layer.
	CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// FindTaskByID retrieves a task by its ID, soft-deleted or not.
	// Returns domain.ErrTaskNotFound if the task doesn't exist.
	FindTaskByID(ctx context.Context, id string) (*domain.Task, error)

	// UpdateTask applies a single-row transition. The write is a
	// compare-and-swap on update.ExpectedVersion: it either applies the full
	// field set and bumps the version, or fails with
	// domain.ErrVersionConflict without partial effects.
	// Returns domain.ErrTaskNotFound if the task doesn't exist.
	UpdateTask(ctx context.Context, update domain.TaskUpdate) (*domain.Task, error)

	// FindContactByID retrieves a contact by ID regardless of owner.
	// Returns domain.ErrContactNotFound if the contact doesn't exist.
	FindContactByID(ctx context.Context, id string) (*domain.Contact, error)
}

// AccessPolicy resolves a caller to a role. Injected at construction per
// the explicit-dependency rule; never re-resolved from ambient state.
type AccessPolicy interface {
	// RoleOf returns the role of the given staff member.
	// Returns domain.ErrStaffNotFound for unknown callers.
	RoleOf(ctx context.Context, staffID string) (domain.Role, error)
}

// TeamMembership answers collaborative-edit queries.
type TeamMembership interface {
	// SharesTeam reports whether both staff ids appear in the staff set of
	// at least one common team.
	SharesTeam(ctx context.Context, staffA, staffB string) (bool, error)

	// FindStaffByID resolves a staff member, used to stamp collaborator
	// names into the teamWork log.
	FindStaffByID(ctx context.Context, id string) (*domain.Staff, error)
}

// Notifier enqueues a notification for later delivery. Implementations are
// fire-and-forget from the caller's perspective: an enqueue failure is
// logged by the service and never fails the owning mutation.
type Notifier interface {
	Enqueue(ctx context.Context, n *domain.Notification) error
}
