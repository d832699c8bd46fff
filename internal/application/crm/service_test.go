package crm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rostam/opsdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	leads    map[string]*domain.Lead
	contacts map[string]*domain.Contact
	meetings []domain.Meeting
	calls    []domain.Call
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		leads:    make(map[string]*domain.Lead),
		contacts: make(map[string]*domain.Contact),
	}
}

func (m *mockRepo) CreateLead(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	stored := *lead
	m.leads[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *mockRepo) FindLeadByID(ctx context.Context, id string) (*domain.Lead, error) {
	l, ok := m.leads[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLeadNotFound, id)
	}
	copied := *l
	return &copied, nil
}

func (m *mockRepo) FindLeadsByStaff(ctx context.Context, staffID string) ([]domain.Lead, error) {
	var out []domain.Lead
	for _, l := range m.leads {
		if l.StaffID == staffID && !l.SoftDeleted {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *mockRepo) PromoteLead(ctx context.Context, leadID string, contact *domain.Contact) (*domain.Contact, error) {
	if _, ok := m.leads[leadID]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLeadNotFound, leadID)
	}
	delete(m.leads, leadID)
	stored := *contact
	m.contacts[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *mockRepo) CreateContact(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	stored := *contact
	m.contacts[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *mockRepo) FindContactByID(ctx context.Context, id string) (*domain.Contact, error) {
	c, ok := m.contacts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrContactNotFound, id)
	}
	copied := *c
	return &copied, nil
}

func (m *mockRepo) FindContactsByStaff(ctx context.Context, staffID string) ([]domain.Contact, error) {
	var out []domain.Contact
	for _, c := range m.contacts {
		if c.StaffID == staffID && !c.SoftDeleted {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockRepo) CreateMeeting(ctx context.Context, meeting *domain.Meeting) (*domain.Meeting, error) {
	m.meetings = append(m.meetings, *meeting)
	copied := *meeting
	return &copied, nil
}

func (m *mockRepo) CreateCall(ctx context.Context, call *domain.Call) (*domain.Call, error) {
	m.calls = append(m.calls, *call)
	copied := *call
	return &copied, nil
}

type access map[string]domain.Role

func (a access) RoleOf(ctx context.Context, staffID string) (domain.Role, error) {
	role, ok := a[staffID]
	if !ok {
		return "", domain.ErrStaffNotFound
	}
	return role, nil
}

func newService() (*Service, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo, access{
		"staff-a": domain.RoleStaff,
		"staff-b": domain.RoleStaff,
		"admin-1": domain.RoleAdmin,
	})
	return svc, repo
}

func seedLead(repo *mockRepo, staffID string) *domain.Lead {
	l := &domain.Lead{
		ID:      uuid.NewString(),
		StaffID: staffID,
		Name:    "Dana Reyes",
		Email:   "dana@example.com",
		Phone:   "+1-555-0100",
		Company: "Acme Rail",
		Source:  "referral",
	}
	repo.leads[l.ID] = l
	return l
}

func seedContact(repo *mockRepo, staffID string) *domain.Contact {
	c := &domain.Contact{
		ID:      uuid.NewString(),
		StaffID: staffID,
		Name:    "Pat Lindqvist",
	}
	repo.contacts[c.ID] = c
	return c
}

func TestCreateLead(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, "staff-a", PersonParams{Name: "Dana Reyes", Source: "webform"})
	require.NoError(t, err)
	assert.Equal(t, "staff-a", lead.StaffID)
	assert.NotEmpty(t, lead.ID)
	assert.Len(t, repo.leads, 1)

	_, err = svc.CreateLead(ctx, "staff-a", PersonParams{Email: "nameless@example.com"})
	assert.ErrorIs(t, err, domain.ErrNameRequired)
}

func TestPromoteLead(t *testing.T) {
	ctx := context.Background()

	t.Run("copies fields and hard-deletes the lead", func(t *testing.T) {
		svc, repo := newService()
		lead := seedLead(repo, "staff-a")

		contact, err := svc.PromoteLead(ctx, lead.ID, "staff-a")
		require.NoError(t, err)
		assert.Equal(t, lead.Name, contact.Name)
		assert.Equal(t, lead.Email, contact.Email)
		assert.Equal(t, lead.Phone, contact.Phone)
		assert.Equal(t, lead.Company, contact.Company)
		assert.Equal(t, lead.Source, contact.Source)
		assert.Equal(t, "staff-a", contact.StaffID)
		assert.NotEqual(t, lead.ID, contact.ID, "contact is a new record, not a renamed lead")

		_, err = svc.ListLeads(ctx, "staff-a", "staff-a")
		require.NoError(t, err)
		assert.Empty(t, repo.leads, "promotion leaves no lead behind")
	})

	t.Run("admin may promote another staff member's lead", func(t *testing.T) {
		svc, repo := newService()
		lead := seedLead(repo, "staff-a")

		contact, err := svc.PromoteLead(ctx, lead.ID, "admin-1")
		require.NoError(t, err)
		assert.Equal(t, "staff-a", contact.StaffID, "ownership follows the lead, not the promoter")
	})

	t.Run("non-owner staff is forbidden", func(t *testing.T) {
		svc, repo := newService()
		lead := seedLead(repo, "staff-a")

		_, err := svc.PromoteLead(ctx, lead.ID, "staff-b")
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Len(t, repo.leads, 1)
	})

	t.Run("soft-deleted lead behaves as missing", func(t *testing.T) {
		svc, repo := newService()
		lead := seedLead(repo, "staff-a")
		lead.SoftDeleted = true

		_, err := svc.PromoteLead(ctx, lead.ID, "staff-a")
		assert.ErrorIs(t, err, domain.ErrLeadNotFound)
	})
}

func TestGetContact(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	contact := seedContact(repo, "staff-a")

	got, err := svc.GetContact(ctx, contact.ID, "staff-a")
	require.NoError(t, err)
	assert.Equal(t, contact.ID, got.ID)

	got, err = svc.GetContact(ctx, contact.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, contact.ID, got.ID)

	_, err = svc.GetContact(ctx, contact.ID, "staff-b")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	contact.SoftDeleted = true
	repo.contacts[contact.ID] = contact
	_, err = svc.GetContact(ctx, contact.ID, "staff-a")
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestScheduleMeeting(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	contact := seedContact(repo, "staff-a")
	at := time.Date(2025, 3, 4, 15, 0, 0, 0, time.UTC)

	meeting, err := svc.ScheduleMeeting(ctx, "staff-a", contact.ID, "kickoff", at, "bring the proposal")
	require.NoError(t, err)
	assert.Equal(t, contact.ID, meeting.ContactID)
	assert.Equal(t, "staff-a", meeting.StaffID)
	assert.True(t, meeting.ScheduledAt.Equal(at))

	_, err = svc.ScheduleMeeting(ctx, "staff-b", contact.ID, "kickoff", at, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Len(t, repo.meetings, 1)
}

func TestLogCall(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	contact := seedContact(repo, "staff-a")
	at := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)

	call, err := svc.LogCall(ctx, "staff-a", contact.ID, "pricing follow-up", at, "wants a discount")
	require.NoError(t, err)
	assert.Equal(t, contact.ID, call.ContactID)
	assert.True(t, call.OccurredAt.Equal(at))
	assert.Len(t, repo.calls, 1)

	_, err = svc.LogCall(ctx, "staff-a", uuid.NewString(), "ghost", at, "")
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}
