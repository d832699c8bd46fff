package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rostam/opsdesk/internal/domain"
)

// halfDayWorkDuration is the exact elapsed time the half-day work-hour
// contract requires between the entry and exit punches.
const halfDayWorkDuration = 4 * time.Hour

// Service owns the leave workflow and the attendance punch rules that
// consume it.
type Service struct {
	repo   Repository
	access AccessPolicy
}

// NewService creates a new leave service.
func NewService(repo Repository, access AccessPolicy) *Service {
	return &Service{repo: repo, access: access}
}

// RequestLeaveParams carries the caller-supplied fields for a new request.
type RequestLeaveParams struct {
	Type      string
	Category  string
	HalfTime  string
	StartDate time.Time
	EndDate   time.Time // zero value defaults to StartDate
	Reason    string
}

// HasOverlap reports whether [start, end] collides with any existing
// non-rejected leave for staffID. excludeLeaveID may be empty.
func (s *Service) HasOverlap(ctx context.Context, staffID string, start, end time.Time, excludeLeaveID string) (bool, error) {
	existing, err := s.repo.FindLeavesByStaff(ctx, staffID)
	if err != nil {
		return false, fmt.Errorf("failed to load leaves: %w", err)
	}
	return hasOverlap(existing, domain.DateOnly(start), domain.DateOnly(end), excludeLeaveID), nil
}

// RequestLeave validates and persists a new pending leave request.
// Overlap with a non-rejected leave fails with domain.ErrLeaveOverlap
// before anything is written.
func (s *Service) RequestLeave(ctx context.Context, staffID string, params RequestLeaveParams) (*domain.Leave, error) {
	leaveType, err := domain.NewLeaveType(params.Type)
	if err != nil {
		return nil, err
	}
	category, err := domain.NewLeaveCategory(params.Category)
	if err != nil {
		return nil, err
	}
	halfTime, err := domain.NewHalfTime(params.HalfTime)
	if err != nil {
		return nil, err
	}

	start := domain.DateOnly(params.StartDate)
	end := start
	if !params.EndDate.IsZero() {
		end = domain.DateOnly(params.EndDate)
	}
	if end.Before(start) {
		return nil, domain.ErrEndBeforeStart
	}

	overlap, err := s.HasOverlap(ctx, staffID, start, end, "")
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, domain.ErrLeaveOverlap
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	leave := &domain.Leave{
		ID:        idObj.String(),
		StaffID:   staffID,
		Type:      leaveType,
		Category:  category,
		HalfTime:  halfTime,
		StartDate: start,
		EndDate:   end,
		Status:    domain.LeavePending,
		Reason:    params.Reason,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.CreateLeave(ctx, leave)
	if err != nil {
		return nil, fmt.Errorf("failed to create leave: %w", err)
	}

	return created, nil
}

// UpdateLeave edits a pending request in place. Decided leaves are
// immutable through this path; date changes re-validate overlap against
// all other leaves, excluding the edited record itself.
func (s *Service) UpdateLeave(ctx context.Context, leaveID, callerID string, params RequestLeaveParams) (*domain.Leave, error) {
	leave, err := s.repo.FindLeaveByID(ctx, leaveID)
	if err != nil {
		return nil, err
	}
	if leave.SoftDeleted {
		return nil, fmt.Errorf("%w: %s", domain.ErrLeaveNotFound, leaveID)
	}
	if leave.StaffID != callerID {
		return nil, fmt.Errorf("%w: not your leave request", domain.ErrForbidden)
	}
	if leave.Status.Decided() {
		return nil, fmt.Errorf("%w: status is %s", domain.ErrLeaveDecided, leave.Status)
	}

	leaveType, err := domain.NewLeaveType(params.Type)
	if err != nil {
		return nil, err
	}
	category, err := domain.NewLeaveCategory(params.Category)
	if err != nil {
		return nil, err
	}
	halfTime, err := domain.NewHalfTime(params.HalfTime)
	if err != nil {
		return nil, err
	}

	start := domain.DateOnly(params.StartDate)
	end := start
	if !params.EndDate.IsZero() {
		end = domain.DateOnly(params.EndDate)
	}
	if end.Before(start) {
		return nil, domain.ErrEndBeforeStart
	}

	overlap, err := s.HasOverlap(ctx, leave.StaffID, start, end, leave.ID)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, domain.ErrLeaveOverlap
	}

	return s.repo.UpdateLeave(ctx, domain.LeaveUpdate{
		LeaveID:         leave.ID,
		ExpectedVersion: leave.Version,
		Type:            &leaveType,
		Category:        &category,
		HalfTime:        &halfTime,
		StartDate:       &start,
		EndDate:         &end,
		Reason:          &params.Reason,
	})
}

// Decide is the admin transition that approves or rejects a request.
// It is the only mutation allowed on a decided leave.
func (s *Service) Decide(ctx context.Context, leaveID, callerID string, status domain.LeaveStatus) (*domain.Leave, error) {
	role, err := s.access.RoleOf(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	if !status.Decided() {
		return nil, fmt.Errorf("%w: decision must be %s or %s", domain.ErrInvalidLeaveStatus, domain.LeaveApproved, domain.LeaveRejected)
	}

	leave, err := s.repo.FindLeaveByID(ctx, leaveID)
	if err != nil {
		return nil, err
	}

	// A rejected leave stops blocking new requests the moment it is
	// rejected, so approval must re-check overlap: another leave may have
	// been approved over the same dates in the meantime.
	if status == domain.LeaveApproved {
		overlap, err := s.HasOverlap(ctx, leave.StaffID, leave.StartDate, leave.EndDate, leave.ID)
		if err != nil {
			return nil, err
		}
		if overlap {
			return nil, domain.ErrLeaveOverlap
		}
	}

	return s.repo.UpdateLeave(ctx, domain.LeaveUpdate{
		LeaveID:         leave.ID,
		ExpectedVersion: leave.Version,
		Status:          &status,
	})
}

// ListLeaves returns a staff member's leave history. Staff see their own;
// admins may inspect anyone's.
func (s *Service) ListLeaves(ctx context.Context, staffID, callerID string) ([]domain.Leave, error) {
	if staffID != callerID {
		role, err := s.access.RoleOf(ctx, callerID)
		if err != nil {
			return nil, err
		}
		if role != domain.RoleAdmin {
			return nil, fmt.Errorf("%w: cannot view another staff member's leaves", domain.ErrForbidden)
		}
	}
	return s.repo.FindLeavesByStaff(ctx, staffID)
}

// RegisterPunch records an attendance punch, enforcing the leave
// interaction rules for the punch date:
//
//   - an approved fullday leave rejects any punch outright;
//   - an approved half-day leave with HalfTime unset or LEAVE accepts an
//     exit punch only when the elapsed time since the matching entry punch
//     is exactly four hours.
func (s *Service) RegisterPunch(ctx context.Context, staffID string, kind domain.PunchKind, at time.Time) (*domain.AttendancePunch, error) {
	if _, err := domain.NewPunchKind(string(kind)); err != nil {
		return nil, err
	}

	at = at.UTC()
	date := domain.DateOnly(at)

	halfDay, err := s.approvedLeaveOn(ctx, staffID, date)
	if err != nil {
		return nil, err
	}

	if kind == domain.PunchExit {
		entry, err := s.lastEntryPunch(ctx, staffID, date)
		if err != nil {
			return nil, err
		}

		if halfDay != nil && halfDay.Type.IsHalfDay() && (halfDay.HalfTime == "" || halfDay.HalfTime == domain.HalfTimeLeave) {
			if at.Sub(entry.At) != halfDayWorkDuration {
				return nil, fmt.Errorf("%w: half-day leave requires exactly %s worked, got %s",
					domain.ErrInvalidState, halfDayWorkDuration, at.Sub(entry.At))
			}
		}
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	punch := &domain.AttendancePunch{
		ID:      idObj.String(),
		StaffID: staffID,
		Kind:    kind,
		At:      at,
	}

	created, err := s.repo.CreatePunch(ctx, punch)
	if err != nil {
		return nil, fmt.Errorf("failed to record punch: %w", err)
	}

	return created, nil
}

// approvedLeaveOn returns the approved leave covering the date, if any.
// A fullday match is an immediate InvalidState for the caller.
func (s *Service) approvedLeaveOn(ctx context.Context, staffID string, date time.Time) (*domain.Leave, error) {
	leaves, err := s.repo.FindLeavesByStaff(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaves: %w", err)
	}

	for i := range leaves {
		l := &leaves[i]
		if l.Status != domain.LeaveApproved || l.SoftDeleted || !l.CoversDate(date) {
			continue
		}
		if l.Type == domain.LeaveFullDay {
			return nil, fmt.Errorf("%w: approved full-day leave on %s", domain.ErrInvalidState, date.Format("2006-01-02"))
		}
		return l, nil
	}
	return nil, nil
}

func (s *Service) lastEntryPunch(ctx context.Context, staffID string, date time.Time) (*domain.AttendancePunch, error) {
	punches, err := s.repo.FindPunches(ctx, staffID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load punches: %w", err)
	}

	for i := len(punches) - 1; i >= 0; i-- {
		if punches[i].Kind == domain.PunchEntry {
			return &punches[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no entry punch recorded for %s", domain.ErrInvalidState, date.Format("2006-01-02"))
}
