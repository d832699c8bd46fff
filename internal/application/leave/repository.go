package leave

import (
	"context"
	"time"

	"github.com/rostam/opsdesk/internal/domain"
)

// Repository defines storage operations for leave and attendance.
type Repository interface {
	// CreateLeave persists a new leave request.
	// Returns the created leave with version populated by the persistence layer.
	CreateLeave(ctx context.Context, leave *domain.Leave) (*domain.Leave, error)

	// FindLeaveByID retrieves a leave record, soft-deleted or not.
	// Returns domain.ErrLeaveNotFound if it doesn't exist.
	FindLeaveByID(ctx context.Context, id string) (*domain.Leave, error)

	// FindLeavesByStaff returns all non-soft-deleted leaves for a staff
	// member, any status.
	FindLeavesByStaff(ctx context.Context, staffID string) ([]domain.Leave, error)

	// UpdateLeave applies a single-row mutation with a version CAS.
	// Returns domain.ErrLeaveNotFound or domain.ErrVersionConflict.
	UpdateLeave(ctx context.Context, update domain.LeaveUpdate) (*domain.Leave, error)

	// CreatePunch records an attendance punch.
	CreatePunch(ctx context.Context, punch *domain.AttendancePunch) (*domain.AttendancePunch, error)

	// FindPunches returns a staff member's punches on the given calendar
	// date (UTC midnight), oldest first.
	FindPunches(ctx context.Context, staffID string, date time.Time) ([]domain.AttendancePunch, error)
}

// AccessPolicy resolves a caller to a role.
type AccessPolicy interface {
	RoleOf(ctx context.Context, staffID string) (domain.Role, error)
}
