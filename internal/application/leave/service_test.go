package leave

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

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

// mockRepo is an in-memory leave/attendance Repository.
type mockRepo struct {
	leaves  map[string]*domain.Leave
	punches []domain.AttendancePunch
}

func newMockRepo() *mockRepo {
	return &mockRepo{leaves: make(map[string]*domain.Leave)}
}

func (m *mockRepo) CreateLeave(ctx context.Context, leave *domain.Leave) (*domain.Leave, error) {
	stored := *leave
	stored.Version = 1
	m.leaves[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *mockRepo) FindLeaveByID(ctx context.Context, id string) (*domain.Leave, error) {
	l, ok := m.leaves[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLeaveNotFound, id)
	}
	copied := *l
	return &copied, nil
}

func (m *mockRepo) FindLeavesByStaff(ctx context.Context, staffID string) ([]domain.Leave, error) {
	var out []domain.Leave
	for _, l := range m.leaves {
		if l.StaffID == staffID && !l.SoftDeleted {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *mockRepo) UpdateLeave(ctx context.Context, update domain.LeaveUpdate) (*domain.Leave, error) {
	l, ok := m.leaves[update.LeaveID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLeaveNotFound, update.LeaveID)
	}
	if l.Version != update.ExpectedVersion {
		return nil, domain.ErrVersionConflict
	}
	if update.Type != nil {
		l.Type = *update.Type
	}
	if update.Category != nil {
		l.Category = *update.Category
	}
	if update.HalfTime != nil {
		l.HalfTime = *update.HalfTime
	}
	if update.StartDate != nil {
		l.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		l.EndDate = *update.EndDate
	}
	if update.Reason != nil {
		l.Reason = *update.Reason
	}
	if update.Status != nil {
		l.Status = *update.Status
	}
	l.Version++
	copied := *l
	return &copied, nil
}

func (m *mockRepo) CreatePunch(ctx context.Context, punch *domain.AttendancePunch) (*domain.AttendancePunch, error) {
	m.punches = append(m.punches, *punch)
	copied := *punch
	return &copied, nil
}

func (m *mockRepo) FindPunches(ctx context.Context, staffID string, date time.Time) ([]domain.AttendancePunch, error) {
	var out []domain.AttendancePunch
	for _, p := range m.punches {
		if p.StaffID == staffID && domain.DateOnly(p.At).Equal(date) {
			out = append(out, p)
		}
	}
	return out, nil
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
		"admin-1": domain.RoleAdmin,
	})
	return svc, repo
}

func seedLeave(repo *mockRepo, staffID string, start, end time.Time, status domain.LeaveStatus) *domain.Leave {
	l := &domain.Leave{
		ID:        uuid.NewString(),
		StaffID:   staffID,
		Type:      domain.LeaveFullDay,
		Category:  domain.CategoryLeave,
		StartDate: start,
		EndDate:   end,
		Status:    status,
		Version:   1,
	}
	repo.leaves[l.ID] = l
	return l
}

func TestHasOverlap(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	seedLeave(repo, "staff-a", day(11), day(11), domain.LeaveApproved)

	t.Run("approved leave inside candidate blocks", func(t *testing.T) {
		overlap, err := svc.HasOverlap(ctx, "staff-a", day(10), day(12), "")
		require.NoError(t, err)
		assert.True(t, overlap)
	})

	t.Run("other staff is unaffected", func(t *testing.T) {
		overlap, err := svc.HasOverlap(ctx, "staff-b", day(10), day(12), "")
		require.NoError(t, err)
		assert.False(t, overlap)
	})
}

func TestHasOverlapRejectedNeverBlocks(t *testing.T) {
	svc, repo := newService()
	seedLeave(repo, "staff-a", day(11), day(11), domain.LeaveRejected)

	overlap, err := svc.HasOverlap(context.Background(), "staff-a", day(10), day(12), "")
	require.NoError(t, err)
	assert.False(t, overlap, "a rejected range is effectively free again")
}

func TestHasOverlapRelations(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	seedLeave(repo, "staff-a", day(10), day(15), domain.LeavePending)

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{name: "existing start within candidate", start: day(8), end: day(11), want: true},
		{name: "existing end within candidate", start: day(14), end: day(20), want: true},
		{name: "existing spans candidate", start: day(11), end: day(12), want: true},
		{name: "disjoint before", start: day(1), end: day(9), want: false},
		{name: "disjoint after", start: day(16), end: day(20), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overlap, err := svc.HasOverlap(ctx, "staff-a", tt.start, tt.end, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, overlap)
		})
	}
}

func TestHasOverlapExcludesSelf(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	mine := seedLeave(repo, "staff-a", day(10), day(12), domain.LeavePending)

	overlap, err := svc.HasOverlap(ctx, "staff-a", day(11), day(13), mine.ID)
	require.NoError(t, err)
	assert.False(t, overlap, "editing a leave must not collide with itself")

	overlap, err = svc.HasOverlap(ctx, "staff-a", day(11), day(13), "")
	require.NoError(t, err)
	assert.True(t, overlap)
}

func TestRequestLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending leave with defaulted end date", func(t *testing.T) {
		svc, _ := newService()
		leave, err := svc.RequestLeave(ctx, "staff-a", RequestLeaveParams{
			Type:      "morning",
			StartDate: day(10),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.LeavePending, leave.Status)
		assert.Equal(t, domain.LeaveMorning, leave.Type)
		assert.Equal(t, domain.CategoryLeave, leave.Category)
		assert.True(t, leave.EndDate.Equal(day(10)))
	})

	t.Run("overlap is a conflict", func(t *testing.T) {
		svc, repo := newService()
		seedLeave(repo, "staff-a", day(10), day(12), domain.LeaveApproved)

		_, err := svc.RequestLeave(ctx, "staff-a", RequestLeaveParams{
			Type:      "fullday",
			StartDate: day(12),
			EndDate:   day(14),
		})
		assert.ErrorIs(t, err, domain.ErrLeaveOverlap)
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		svc, _ := newService()
		_, err := svc.RequestLeave(ctx, "staff-a", RequestLeaveParams{
			Type:      "fullday",
			StartDate: day(10),
			EndDate:   day(9),
		})
		assert.ErrorIs(t, err, domain.ErrEndBeforeStart)
	})
}

func TestUpdateLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("pending leave may move onto its own old range", func(t *testing.T) {
		svc, repo := newService()
		mine := seedLeave(repo, "staff-a", day(10), day(12), domain.LeavePending)

		updated, err := svc.UpdateLeave(ctx, mine.ID, "staff-a", RequestLeaveParams{
			Type:      "fullday",
			StartDate: day(11),
			EndDate:   day(13),
		})
		require.NoError(t, err)
		assert.True(t, updated.StartDate.Equal(day(11)))
		assert.True(t, updated.EndDate.Equal(day(13)))
	})

	t.Run("decided leave is immutable", func(t *testing.T) {
		svc, repo := newService()
		mine := seedLeave(repo, "staff-a", day(10), day(12), domain.LeaveApproved)

		_, err := svc.UpdateLeave(ctx, mine.ID, "staff-a", RequestLeaveParams{
			Type:      "fullday",
			StartDate: day(20),
		})
		assert.ErrorIs(t, err, domain.ErrLeaveDecided)
	})

	t.Run("someone else's leave is forbidden", func(t *testing.T) {
		svc, repo := newService()
		other := seedLeave(repo, "staff-b", day(10), day(12), domain.LeavePending)

		_, err := svc.UpdateLeave(ctx, other.ID, "staff-a", RequestLeaveParams{
			Type:      "fullday",
			StartDate: day(20),
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestDecide(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()
	mine := seedLeave(repo, "staff-a", day(10), day(12), domain.LeavePending)

	_, err := svc.Decide(ctx, mine.ID, "staff-a", domain.LeaveApproved)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Decide(ctx, mine.ID, "admin-1", domain.LeavePending)
	assert.ErrorIs(t, err, domain.ErrInvalidLeaveStatus)

	decided, err := svc.Decide(ctx, mine.ID, "admin-1", domain.LeaveApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.LeaveApproved, decided.Status)

	// The decision transition itself may flip an already-decided leave.
	decided, err = svc.Decide(ctx, mine.ID, "admin-1", domain.LeaveRejected)
	require.NoError(t, err)
	assert.Equal(t, domain.LeaveRejected, decided.Status)
}

func TestDecideApprovalRechecksOverlap(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()

	first := seedLeave(repo, "staff-a", day(10), day(12), domain.LeaveRejected)
	seedLeave(repo, "staff-a", day(11), day(11), domain.LeaveApproved)

	// Flipping the rejected request back would stack two approved leaves
	// over the same dates.
	_, err := svc.Decide(ctx, first.ID, "admin-1", domain.LeaveApproved)
	assert.ErrorIs(t, err, domain.ErrLeaveOverlap)

	// Rejecting needs no overlap check, whatever the range holds.
	decided, err := svc.Decide(ctx, first.ID, "admin-1", domain.LeaveRejected)
	require.NoError(t, err)
	assert.Equal(t, domain.LeaveRejected, decided.Status)
}

func TestRegisterPunchHalfDay(t *testing.T) {
	ctx := context.Background()
	entryAt := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	setup := func(halfTime domain.HalfTime) (*Service, *mockRepo) {
		svc, repo := newService()
		l := seedLeave(repo, "staff-a", day(10), day(10), domain.LeaveApproved)
		l.Type = domain.LeaveMorning
		l.HalfTime = halfTime
		return svc, repo
	}

	t.Run("exactly four hours succeeds", func(t *testing.T) {
		svc, _ := setup("")
		_, err := svc.RegisterPunch(ctx, "staff-a", domain.PunchEntry, entryAt)
		require.NoError(t, err)

		punch, err := svc.RegisterPunch(ctx, "staff-a", domain.PunchExit, entryAt.Add(4*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, domain.PunchExit, punch.Kind)
	})

	t.Run("one minute short fails", func(t *testing.T) {
		svc, _ := setup(domain.HalfTimeLeave)
		_, err := svc.RegisterPunch(ctx, "staff-a", domain.PunchEntry, entryAt)
		require.NoError(t, err)

		_, err = svc.RegisterPunch(ctx, "staff-a", domain.PunchExit, entryAt.Add(4*time.Hour-time.Minute))
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("one minute over fails", func(t *testing.T) {
		svc, _ := setup("")
		_, err := svc.RegisterPunch(ctx, "staff-a", domain.PunchEntry, entryAt)
		require.NoError(t, err)

		_, err = svc.RegisterPunch(ctx, "staff-a", domain.PunchExit, entryAt.Add(4*time.Hour+time.Minute))
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("offline half-time waives the contract", func(t *testing.T) {
		svc, _ := setup(domain.HalfTimeOffline)
		_, err := svc.RegisterPunch(ctx, "staff-a", domain.PunchEntry, entryAt)
		require.NoError(t, err)

		_, err = svc.RegisterPunch(ctx, "staff-a", domain.PunchExit, entryAt.Add(7*time.Hour))
		require.NoError(t, err)
	})

	t.Run("exit without entry fails", func(t *testing.T) {
		svc, _ := setup("")
		_, err := svc.RegisterPunch(ctx, "staff-a", domain.PunchExit, entryAt.Add(4*time.Hour))
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestRegisterPunchFullDay(t *testing.T) {
	svc, repo := newService()
	seedLeave(repo, "staff-a", day(10), day(10), domain.LeaveApproved)

	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	_, err := svc.RegisterPunch(context.Background(), "staff-a", domain.PunchEntry, at)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "full-day leave rejects any punch")
}

func TestRegisterPunchNoLeave(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	_, err := svc.RegisterPunch(ctx, "staff-a", domain.PunchEntry, at)
	require.NoError(t, err)
	_, err = svc.RegisterPunch(ctx, "staff-a", domain.PunchExit, at.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Len(t, repo.punches, 2)

	// Rejected full-day leave on the date does not block punches either.
	seedLeave(repo, "staff-a", day(11), day(11), domain.LeaveRejected)
	_, err = svc.RegisterPunch(ctx, "staff-a", domain.PunchEntry, at.Add(24*time.Hour))
	require.NoError(t, err)
}
