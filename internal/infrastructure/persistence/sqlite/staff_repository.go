package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rostam/opsdesk/internal/domain"
)

// CreateStaff persists a new staff member.
func (s *Store) CreateStaff(ctx context.Context, staff *domain.Staff) (*domain.Staff, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff (id, name, email, role, image_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		staff.ID, staff.Name, staff.Email, string(staff.Role), staff.ImagePath, staff.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create staff: %w", err)
	}
	return staff, nil
}

// FindStaffByID resolves a staff member.
func (s *Store) FindStaffByID(ctx context.Context, id string) (*domain.Staff, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, image_path, created_at FROM staff WHERE id = ?`, id)

	var staff domain.Staff
	var role string
	err := row.Scan(&staff.ID, &staff.Name, &staff.Email, &role, &staff.ImagePath, &staff.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStaffNotFound, id)
		}
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	staff.Role = domain.Role(role)
	return &staff, nil
}

// FindStaffByEmail resolves a staff member by email.
func (s *Store) FindStaffByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, role, image_path, created_at FROM staff WHERE email = ?`, email)

	var staff domain.Staff
	var role string
	err := row.Scan(&staff.ID, &staff.Name, &staff.Email, &role, &staff.ImagePath, &staff.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrStaffNotFound, email)
		}
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	staff.Role = domain.Role(role)
	return &staff, nil
}

// RoleOf returns the role of the given staff member.
func (s *Store) RoleOf(ctx context.Context, staffID string) (domain.Role, error) {
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT role FROM staff WHERE id = ?`, staffID).Scan(&role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", domain.ErrStaffNotFound, staffID)
		}
		return "", fmt.Errorf("failed to get staff role: %w", err)
	}
	return domain.Role(role), nil
}

// SharesTeam reports whether both staff ids appear in the staff set of at
// least one common non-deleted team.
func (s *Store) SharesTeam(ctx context.Context, staffA, staffB string) (bool, error) {
	var shares bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM team_members a
			JOIN team_members b ON a.team_id = b.team_id
			JOIN teams t ON t.id = a.team_id
			WHERE a.staff_id = ? AND b.staff_id = ? AND NOT t.soft_deleted
		)`, staffA, staffB).Scan(&shares)
	if err != nil {
		return false, fmt.Errorf("failed to check team membership: %w", err)
	}
	return shares, nil
}

// CreateTeam persists a team and its membership.
func (s *Store) CreateTeam(ctx context.Context, team *domain.Team) (*domain.Team, error) {
	err := s.executeInTransaction(ctx, "create_team", func(txStore *Store) error {
		_, err := txStore.db.ExecContext(ctx, `
			INSERT INTO teams (id, name, soft_deleted, created_at)
			VALUES (?, ?, ?, ?)`,
			team.ID, team.Name, team.SoftDeleted, team.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}

		for _, staffID := range team.StaffIDs {
			if _, err := txStore.db.ExecContext(ctx, `
				INSERT INTO team_members (team_id, staff_id) VALUES (?, ?)`,
				team.ID, staffID); err != nil {
				return fmt.Errorf("failed to add team member: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// FindTeamByID retrieves a team with its membership, soft-deleted or not.
func (s *Store) FindTeamByID(ctx context.Context, id string) (*domain.Team, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, soft_deleted, created_at FROM teams WHERE id = ?`, id)

	var team domain.Team
	err := row.Scan(&team.ID, &team.Name, &team.SoftDeleted, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: team %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT staff_id FROM team_members WHERE team_id = ? ORDER BY staff_id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var staffID string
		if err := rows.Scan(&staffID); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		team.StaffIDs = append(team.StaffIDs, staffID)
	}
	return &team, rows.Err()
}
