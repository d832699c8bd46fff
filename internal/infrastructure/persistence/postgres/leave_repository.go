package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rostam/opsdesk/internal/domain"
)

const leaveColumns = `id, staff_id, type, category, half_time, start_date, end_date,
	status, reason, soft_deleted, created_at, version`

// CreateLeave persists a new leave request.
func (s *Store) CreateLeave(ctx context.Context, leave *domain.Leave) (*domain.Leave, error) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO leaves (id, staff_id, type, category, half_time, start_date, end_date,
			status, reason, soft_deleted, created_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)`,
		leave.ID, leave.StaffID, string(leave.Type), string(leave.Category),
		string(leave.HalfTime), leave.StartDate, leave.EndDate, string(leave.Status),
		leave.Reason, leave.SoftDeleted, leave.CreatedAt)
	if err != nil {
		return nil, mapPgError(err, "leave")
	}
	return s.FindLeaveByID(ctx, leave.ID)
}

// FindLeaveByID retrieves a leave record, soft-deleted or not.
func (s *Store) FindLeaveByID(ctx context.Context, id string) (*domain.Leave, error) {
	row := s.db.QueryRow(ctx, `SELECT `+leaveColumns+` FROM leaves WHERE id = $1`, id)
	l, err := scanLeave(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrLeaveNotFound, id)
		}
		return nil, fmt.Errorf("failed to get leave: %w", err)
	}
	return l, nil
}

// FindLeavesByStaff returns all non-soft-deleted leaves for a staff member.
func (s *Store) FindLeavesByStaff(ctx context.Context, staffID string) ([]domain.Leave, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+leaveColumns+` FROM leaves
		WHERE staff_id = $1 AND NOT soft_deleted
		ORDER BY start_date`, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leaves: %w", err)
	}
	defer rows.Close()

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
		row := txStore.db.QueryRow(ctx,
			`SELECT `+leaveColumns+` FROM leaves WHERE id = $1 FOR UPDATE`, update.LeaveID)
		l, err := scanLeave(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s", domain.ErrLeaveNotFound, update.LeaveID)
			}
			return fmt.Errorf("failed to get leave: %w", err)
		}

		if l.Version != update.ExpectedVersion {
			return fmt.Errorf("%w: leave %s version %d, expected %d",
				domain.ErrVersionConflict, l.ID, l.Version, update.ExpectedVersion)
		}

		l.ApplyUpdate(update)

		tag, err := txStore.db.Exec(ctx, `
			UPDATE leaves SET type = $2, category = $3, half_time = $4, start_date = $5,
				end_date = $6, status = $7, reason = $8, version = version + 1
			WHERE id = $1`,
			l.ID, string(l.Type), string(l.Category), string(l.HalfTime),
			l.StartDate, l.EndDate, string(l.Status), l.Reason)
		if err != nil {
			return fmt.Errorf("failed to update leave: %w", err)
		}
		if err := checkRowsAffected(tag.RowsAffected(), domain.ErrLeaveNotFound, l.ID); err != nil {
			return err
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
	_, err := s.db.Exec(ctx, `
		INSERT INTO attendance_punches (id, staff_id, kind, at)
		VALUES ($1, $2, $3, $4)`,
		punch.ID, punch.StaffID, string(punch.Kind), punch.At)
	if err != nil {
		return nil, mapPgError(err, "punch")
	}
	return punch, nil
}

// FindPunches returns a staff member's punches on the given calendar date,
// oldest first.
func (s *Store) FindPunches(ctx context.Context, staffID string, date time.Time) ([]domain.AttendancePunch, error) {
	dayStart := domain.DateOnly(date)
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := s.db.Query(ctx, `
		SELECT id, staff_id, kind, at FROM attendance_punches
		WHERE staff_id = $1 AND at >= $2 AND at < $3
		ORDER BY at`, staffID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list punches: %w", err)
	}
	defer rows.Close()

	var punches []domain.AttendancePunch
	for rows.Next() {
		var p domain.AttendancePunch
		var kind string
		if err := rows.Scan(&p.ID, &p.StaffID, &kind, &p.At); err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		p.Kind = domain.PunchKind(kind)
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

func scanLeave(row pgx.Row) (*domain.Leave, error) {
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
	// DATE columns come back at local midnight on some drivers; normalize.
	l.StartDate = domain.DateOnly(l.StartDate)
	l.EndDate = domain.DateOnly(l.EndDate)
	return &l, nil
}
