package crm

import (
	"context"

	"github.com/rostam/opsdesk/internal/domain"
)

// Repository defines storage operations for the customer-facing records:
// leads, contacts, meetings and calls.
type Repository interface {
	// CreateLead persists a new lead.
	CreateLead(ctx context.Context, lead *domain.Lead) (*domain.Lead, error)

	// FindLeadByID retrieves a lead, soft-deleted or not.
	// Returns domain.ErrLeadNotFound if it doesn't exist.
	FindLeadByID(ctx context.Context, id string) (*domain.Lead, error)

	// FindLeadsByStaff returns all non-soft-deleted leads owned by a staff
	// member.
	FindLeadsByStaff(ctx context.Context, staffID string) ([]domain.Lead, error)

	// PromoteLead inserts the contact and hard-deletes the lead in one
	// transaction. Returns the created contact.
	PromoteLead(ctx context.Context, leadID string, contact *domain.Contact) (*domain.Contact, error)

	// CreateContact persists a new contact directly, without a lead.
	CreateContact(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)

	// FindContactByID retrieves a contact, soft-deleted or not.
	// Returns domain.ErrContactNotFound if it doesn't exist.
	FindContactByID(ctx context.Context, id string) (*domain.Contact, error)

	// FindContactsByStaff returns all non-soft-deleted contacts owned by a
	// staff member.
	FindContactsByStaff(ctx context.Context, staffID string) ([]domain.Contact, error)

	// CreateMeeting persists a scheduled meeting.
	CreateMeeting(ctx context.Context, meeting *domain.Meeting) (*domain.Meeting, error)

	// CreateCall persists a logged call.
	CreateCall(ctx context.Context, call *domain.Call) (*domain.Call, error)
}

// AccessPolicy resolves a caller to a role.
type AccessPolicy interface {
	RoleOf(ctx context.Context, staffID string) (domain.Role, error)
}
