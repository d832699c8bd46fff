package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rostam/opsdesk/internal/domain"
)

const leadColumns = `id, staff_id, name, email, phone, company, source, soft_deleted, created_at`
const contactColumns = leadColumns

// CreateLead persists a new lead.
func (s *Store) CreateLead(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO leads (id, staff_id, name, email, phone, company, source, soft_deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		lead.ID, lead.StaffID, lead.Name, lead.Email, lead.Phone, lead.Company,
		lead.Source, lead.SoftDeleted, lead.CreatedAt)
	if err != nil {
		return nil, mapPgError(err, "lead")
	}
	return s.FindLeadByID(ctx, lead.ID)
}

// FindLeadByID retrieves a lead, soft-deleted or not.
func (s *Store) FindLeadByID(ctx context.Context, id string) (*domain.Lead, error) {
	row := s.db.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)

	var l domain.Lead
	err := row.Scan(&l.ID, &l.StaffID, &l.Name, &l.Email, &l.Phone, &l.Company,
		&l.Source, &l.SoftDeleted, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrLeadNotFound, id)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &l, nil
}

// FindLeadsByStaff returns all non-soft-deleted leads owned by a staff member.
func (s *Store) FindLeadsByStaff(ctx context.Context, staffID string) ([]domain.Lead, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE staff_id = $1 AND NOT soft_deleted
		ORDER BY created_at DESC`, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		var l domain.Lead
		if err := rows.Scan(&l.ID, &l.StaffID, &l.Name, &l.Email, &l.Phone, &l.Company,
			&l.Source, &l.SoftDeleted, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// PromoteLead inserts the contact and hard-deletes the lead in one
// transaction, so a promoted lead can never exist alongside its contact.
func (s *Store) PromoteLead(ctx context.Context, leadID string, contact *domain.Contact) (*domain.Contact, error) {
	err := s.executeInTransaction(ctx, "promote_lead", func(txStore *Store) error {
		if _, err := txStore.CreateContact(ctx, contact); err != nil {
			return err
		}

		tag, err := txStore.db.Exec(ctx, `DELETE FROM leads WHERE id = $1`, leadID)
		if err != nil {
			return fmt.Errorf("failed to delete lead: %w", err)
		}
		return checkRowsAffected(tag.RowsAffected(), domain.ErrLeadNotFound, leadID)
	})
	if err != nil {
		return nil, err
	}
	return s.FindContactByID(ctx, contact.ID)
}

// CreateContact persists a new contact.
func (s *Store) CreateContact(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO contacts (id, staff_id, name, email, phone, company, source, soft_deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		contact.ID, contact.StaffID, contact.Name, contact.Email, contact.Phone,
		contact.Company, contact.Source, contact.SoftDeleted, contact.CreatedAt)
	if err != nil {
		return nil, mapPgError(err, "contact")
	}
	return contact, nil
}

// FindContactByID retrieves a contact by ID regardless of owner.
func (s *Store) FindContactByID(ctx context.Context, id string) (*domain.Contact, error) {
	row := s.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)

	var c domain.Contact
	err := row.Scan(&c.ID, &c.StaffID, &c.Name, &c.Email, &c.Phone, &c.Company,
		&c.Source, &c.SoftDeleted, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrContactNotFound, id)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &c, nil
}

// FindContactsByStaff returns all non-soft-deleted contacts owned by a
// staff member.
func (s *Store) FindContactsByStaff(ctx context.Context, staffID string) ([]domain.Contact, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE staff_id = $1 AND NOT soft_deleted
		ORDER BY created_at DESC`, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.StaffID, &c.Name, &c.Email, &c.Phone, &c.Company,
			&c.Source, &c.SoftDeleted, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// CreateMeeting persists a scheduled meeting.
func (s *Store) CreateMeeting(ctx context.Context, meeting *domain.Meeting) (*domain.Meeting, error) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO meetings (id, contact_id, staff_id, subject, scheduled_at, notes, soft_deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		meeting.ID, meeting.ContactID, meeting.StaffID, meeting.Subject,
		meeting.ScheduledAt, meeting.Notes, meeting.SoftDeleted, meeting.CreatedAt)
	if err != nil {
		return nil, mapPgError(err, "meeting")
	}
	return meeting, nil
}

// CreateCall persists a logged call.
func (s *Store) CreateCall(ctx context.Context, call *domain.Call) (*domain.Call, error) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO calls (id, contact_id, staff_id, subject, occurred_at, notes, soft_deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		call.ID, call.ContactID, call.StaffID, call.Subject,
		call.OccurredAt, call.Notes, call.SoftDeleted, call.CreatedAt)
	if err != nil {
		return nil, mapPgError(err, "call")
	}
	return call, nil
}

// FindMeetingByID retrieves a meeting, soft-deleted or not.
func (s *Store) FindMeetingByID(ctx context.Context, id string) (*domain.Meeting, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, contact_id, staff_id, subject, scheduled_at, notes, soft_deleted, created_at
		FROM meetings WHERE id = $1`, id)

	var m domain.Meeting
	err := row.Scan(&m.ID, &m.ContactID, &m.StaffID, &m.Subject, &m.ScheduledAt,
		&m.Notes, &m.SoftDeleted, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: meeting %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return &m, nil
}

// FindCallByID retrieves a call, soft-deleted or not.
func (s *Store) FindCallByID(ctx context.Context, id string) (*domain.Call, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, contact_id, staff_id, subject, occurred_at, notes, soft_deleted, created_at
		FROM calls WHERE id = $1`, id)

	var c domain.Call
	err := row.Scan(&c.ID, &c.ContactID, &c.StaffID, &c.Subject, &c.OccurredAt,
		&c.Notes, &c.SoftDeleted, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: call %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get call: %w", err)
	}
	return &c, nil
}
