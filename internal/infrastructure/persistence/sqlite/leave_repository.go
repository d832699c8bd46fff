package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rostam/opsdesk/internal/domain"
)

const leaveColumns = `id, staff_id, type, category, half_time, start_date, end_date,
	status, reason, soft_deleted, created_at, version`

// CreateLeave persists a new leave request.
func (s *Store) CreateLeave(ctx context.Context, leave *domain.Leave) (*domain.Leave, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leaves (`+leaveColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		leave.ID, leave.StaffID, string(leave.Type), string(leave.Category),
		string(leave.HalfTime), leave.StartDate, leave.EndDate, string(leave.Status),
		leave.Reason, leave.SoftDeleted, leave.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create leave: %w", err)
	}
	return s.FindLeaveByID(ctx, leave.ID)
}

// FindLeaveByID retrieves a leave record, soft-deleted or not.
func (s *Store) FindLeaveByID(ctx context.Context, id string) (*domain.Leave, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+leaveColumns+` FROM leaves WHERE id = ?`, id)
	l, err := scanLeave(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrLeaveNotFound, id)
		}
		return nil, fmt.Errorf("failed to get leave: %w", err)
	}
	return l, nil
}

// FindLeavesByStaff returns all non-soft-deleted leaves for a staff member.
func (s *Store) FindLeavesByStaff(ctx context.Context, staffID string) ([]domain.Leave, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+leaveColumns+` FROM leaves
		WHERE staff_id = ? AND NOT soft_deleted
		ORDER BY start_date`, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaves: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var leaves []domain.Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave: %w", err)
		}
		leaves = append(leaves, *l)
	}
	return leaves, rows.Err()
}

// UpdateLeave applies a mutation as a compare-and-swap on the stored version.
func (s *Store) UpdateLeave(ctx context.Context, update domain.LeaveUpdate) (*domain.Leave, error) {
	var updated *domain.Leave

	err := s.executeInTransaction(ctx, "update_leave", func(txStore *Store) error {
		l, err := txStore.FindLeaveByID(ctx, update.LeaveID)
		if err != nil {
			return err
		}

		if l.Version != update.ExpectedVersion {
			return fmt.Errorf("%w: leave %s version %d, expected %d",
				domain.ErrVersionConflict, l.ID, l.Version, update.ExpectedVersion)
		}

		l.ApplyUpdate(update)

		res, err := txStore.db.ExecContext(ctx, `
			UPDATE leaves SET type = ?, category = ?, half_time = ?, start_date = ?,
				end_date = ?, status = ?, reason = ?, version = version + 1
			WHERE id = ? AND version = ?`,
			string(l.Type), string(l.Category), string(l.HalfTime), l.StartDate,
			l.EndDate, string(l.Status), l.Reason, l.ID, update.ExpectedVersion)
		if err != nil {
			return fmt.Errorf("failed to update leave: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: leave %s", domain.ErrVersionConflict, l.ID)
		}

		l.Version++
		updated = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CreatePunch records an attendance punch.
func (s *Store) CreatePunch(ctx context.Context, punch *domain.AttendancePunch) (*domain.AttendancePunch, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance_punches (id, staff_id, kind, at)
		VALUES (?, ?, ?, ?)`,
		punch.ID, punch.StaffID, string(punch.Kind), punch.At)
	if err != nil {
		return nil, fmt.Errorf("failed to record punch: %w", err)
	}
	return punch, nil
}

// FindPunches returns a staff member's punches on the given calendar date,
// oldest first.
func (s *Store) FindPunches(ctx context.Context, staffID string, date time.Time) ([]domain.AttendancePunch, error) {
	dayStart := domain.DateOnly(date)
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_id, kind, at FROM attendance_punches
		WHERE staff_id = ? AND at >= ? AND at < ?
		ORDER BY at`, staffID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list punches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var punches []domain.AttendancePunch
	for rows.Next() {
		var p domain.AttendancePunch
		var kind string
		if err := rows.Scan(&p.ID, &p.StaffID, &kind, &p.At); err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		p.Kind = domain.PunchKind(kind)
		p.At = p.At.UTC()
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

func scanLeave(row rowScanner) (*domain.Leave, error) {
	var l domain.Leave
	var leaveType, category, halfTime, status string

	err := row.Scan(&l.ID, &l.StaffID, &leaveType, &category, &halfTime,
		&l.StartDate, &l.EndDate, &status, &l.Reason, &l.SoftDeleted,
		&l.CreatedAt, &l.Version)
	if err != nil {
		return nil, err
	}

	l.Type = domain.LeaveType(leaveType)
	l.Category = domain.LeaveCategory(category)
	l.HalfTime = domain.HalfTime(halfTime)
	l.Status = domain.LeaveStatus(status)
	l.StartDate = domain.DateOnly(l.StartDate)
	l.EndDate = domain.DateOnly(l.EndDate)
	l.CreatedAt = l.CreatedAt.UTC()
	return &l, nil
}
