package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rostam/opsdesk/internal/domain"
)

// Service owns lead capture, promotion to contact, and the light activity
// records (meetings, calls) kept against contacts.
type Service struct {
	repo   Repository
	access AccessPolicy
}

// NewService creates a new CRM service.
func NewService(repo Repository, access AccessPolicy) *Service {
	return &Service{repo: repo, access: access}
}

// PersonParams carries the shared lead/contact fields.
type PersonParams struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Source  string
}

// CreateLead captures a new prospect owned by the caller.
func (s *Service) CreateLead(ctx context.Context, ownerID string, params PersonParams) (*domain.Lead, error) {
	if params.Name == "" {
		return nil, domain.ErrNameRequired
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	lead := &domain.Lead{
		ID:        idObj.String(),
		StaffID:   ownerID,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Company:   params.Company,
		Source:    params.Source,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.CreateLead(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return created, nil
}

// ListLeads returns the caller's leads. Admins may inspect anyone's.
func (s *Service) ListLeads(ctx context.Context, staffID, callerID string) ([]domain.Lead, error) {
	if err := s.requireSelfOrAdmin(ctx, staffID, callerID); err != nil {
		return nil, err
	}
	return s.repo.FindLeadsByStaff(ctx, staffID)
}

// PromoteLead turns a lead into a contact. The contact is a structural
// copy of the lead and the lead is hard-deleted in the same operation,
// so a promoted lead leaves no record behind and cannot reach the trash.
func (s *Service) PromoteLead(ctx context.Context, leadID, callerID string) (*domain.Contact, error) {
	lead, err := s.repo.FindLeadByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead.SoftDeleted {
		return nil, fmt.Errorf("%w: %s", domain.ErrLeadNotFound, leadID)
	}
	if err := s.requireSelfOrAdmin(ctx, lead.StaffID, callerID); err != nil {
		return nil, err
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	contact := &domain.Contact{
		ID:        idObj.String(),
		StaffID:   lead.StaffID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Company:   lead.Company,
		Source:    lead.Source,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.PromoteLead(ctx, lead.ID, contact)
	if err != nil {
		return nil, fmt.Errorf("failed to promote lead: %w", err)
	}
	return created, nil
}

// CreateContact registers a contact directly, skipping the lead stage.
func (s *Service) CreateContact(ctx context.Context, ownerID string, params PersonParams) (*domain.Contact, error) {
	if params.Name == "" {
		return nil, domain.ErrNameRequired
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	contact := &domain.Contact{
		ID:        idObj.String(),
		StaffID:   ownerID,
		Name:      params.Name,
		Email:     params.Email,
		Phone:     params.Phone,
		Company:   params.Company,
		Source:    params.Source,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.CreateContact(ctx, contact)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return created, nil
}

// GetContact returns a visible contact owned by the caller, or any contact
// for an admin.
func (s *Service) GetContact(ctx context.Context, contactID, callerID string) (*domain.Contact, error) {
	contact, err := s.repo.FindContactByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact.SoftDeleted {
		return nil, fmt.Errorf("%w: %s", domain.ErrContactNotFound, contactID)
	}
	if err := s.requireSelfOrAdmin(ctx, contact.StaffID, callerID); err != nil {
		return nil, err
	}
	return contact, nil
}

// ListContacts returns the caller's contacts. Admins may inspect anyone's.
func (s *Service) ListContacts(ctx context.Context, staffID, callerID string) ([]domain.Contact, error) {
	if err := s.requireSelfOrAdmin(ctx, staffID, callerID); err != nil {
		return nil, err
	}
	return s.repo.FindContactsByStaff(ctx, staffID)
}

// ScheduleMeeting records a future appointment against a contact the
// caller can see.
func (s *Service) ScheduleMeeting(ctx context.Context, callerID, contactID, subject string, scheduledAt time.Time, notes string) (*domain.Meeting, error) {
	if _, err := s.GetContact(ctx, contactID, callerID); err != nil {
		return nil, err
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	meeting := &domain.Meeting{
		ID:          idObj.String(),
		ContactID:   contactID,
		StaffID:     callerID,
		Subject:     subject,
		ScheduledAt: scheduledAt.UTC(),
		Notes:       notes,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.repo.CreateMeeting(ctx, meeting)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	return created, nil
}

// LogCall records a phone call that already happened against a contact the
// caller can see.
func (s *Service) LogCall(ctx context.Context, callerID, contactID, subject string, occurredAt time.Time, notes string) (*domain.Call, error) {
	if _, err := s.GetContact(ctx, contactID, callerID); err != nil {
		return nil, err
	}

	idObj, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	call := &domain.Call{
		ID:         idObj.String(),
		ContactID:  contactID,
		StaffID:    callerID,
		Subject:    subject,
		OccurredAt: occurredAt.UTC(),
		Notes:      notes,
		CreatedAt:  time.Now().UTC(),
	}

	created, err := s.repo.CreateCall(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("failed to create call: %w", err)
	}
	return created, nil
}

func (s *Service) requireSelfOrAdmin(ctx context.Context, ownerID, callerID string) error {
	if ownerID == callerID {
		return nil
	}
	role, err := s.access.RoleOf(ctx, callerID)
	if err != nil {
		return err
	}
	if role != domain.RoleAdmin {
		return fmt.Errorf("%w: not your record", domain.ErrForbidden)
	}
	return nil
}
