package trash

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rostam/opsdesk/internal/domain"
	"github.com/rostam/opsdesk/internal/ptr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record is a minimal soft-deletable entity for ledger tests.
type record struct {
	ID          string
	Owner       string
	Payload     string
	SoftDeleted bool
}

// memStore is an in-memory EntityStore with ownership.
type memStore struct {
	records  map[string]*record
	flagErr  error // injected SetSoftDeleted failure
	deleteCh []string
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*record)}
}

func (s *memStore) Find(ctx context.Context, id string) (any, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	copied := *r
	return &copied, nil
}

func (s *memStore) SetSoftDeleted(ctx context.Context, id string, deleted bool) error {
	if s.flagErr != nil {
		return s.flagErr
	}
	r, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	r.SoftDeleted = deleted
	return nil
}

func (s *memStore) HardDelete(ctx context.Context, id string) error {
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	delete(s.records, id)
	s.deleteCh = append(s.deleteCh, id)
	return nil
}

func (s *memStore) OwnerOf(ctx context.Context, id string) (string, error) {
	r, ok := s.records[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return r.Owner, nil
}

// adminOnlyStore delegates to a memStore without promoting OwnerOf,
// modeling kinds that carry no per-record owner.
type adminOnlyStore struct{ inner *memStore }

func (s *adminOnlyStore) Find(ctx context.Context, id string) (any, error) {
	return s.inner.Find(ctx, id)
}

func (s *adminOnlyStore) SetSoftDeleted(ctx context.Context, id string, deleted bool) error {
	return s.inner.SetSoftDeleted(ctx, id, deleted)
}

func (s *adminOnlyStore) HardDelete(ctx context.Context, id string) error {
	return s.inner.HardDelete(ctx, id)
}

// memTombstones is an in-memory tombstone Repository.
type memTombstones struct {
	entries map[string]*domain.TrashEntry
}

func newMemTombstones() *memTombstones {
	return &memTombstones{entries: make(map[string]*domain.TrashEntry)}
}

func (m *memTombstones) InsertTombstone(ctx context.Context, entry *domain.TrashEntry) (*domain.TrashEntry, error) {
	// The id column is a primary key; store it as given, like the real
	// repositories do.
	if _, exists := m.entries[entry.ID]; exists {
		return nil, fmt.Errorf("duplicate tombstone id %q", entry.ID)
	}
	stored := *entry
	m.entries[stored.ID] = &stored
	copied := stored
	return &copied, nil
}

func (m *memTombstones) FindTombstone(ctx context.Context, kind domain.EntityKind, tombstoneID, actorID string) (*domain.TrashEntry, error) {
	e, ok := m.entries[tombstoneID]
	if !ok || e.Kind != kind || e.ActorID != actorID {
		return nil, fmt.Errorf("%w: %s", domain.ErrTombstoneNotFound, tombstoneID)
	}
	copied := *e
	return &copied, nil
}

func (m *memTombstones) DeleteTombstone(ctx context.Context, tombstoneID string) error {
	if _, ok := m.entries[tombstoneID]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrTombstoneNotFound, tombstoneID)
	}
	delete(m.entries, tombstoneID)
	return nil
}

func (m *memTombstones) ListTombstones(ctx context.Context, params domain.ListTrashParams) ([]domain.TrashEntry, error) {
	var out []domain.TrashEntry
	for _, e := range m.entries {
		if e.ActorID != params.ActorID {
			continue
		}
		if params.Kind != nil && e.Kind != *params.Kind {
			continue
		}
		if params.DeletedAfter != nil && e.DeletedAt.Before(*params.DeletedAfter) {
			continue
		}
		if params.DeletedBefore != nil && e.DeletedAt.After(*params.DeletedBefore) {
			continue
		}
		out = append(out, *e)
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

func newTestLedger() (*Ledger, *memStore, *memTombstones) {
	tasks := newMemStore()
	tasks.records["task-1"] = &record{ID: "task-1", Owner: "staff-a", Payload: "loan app"}

	repo := newMemTombstones()
	ledger := NewLedger(repo, access{
		"staff-a": domain.RoleStaff,
		"staff-b": domain.RoleStaff,
		"admin-1": domain.RoleAdmin,
	})
	ledger.Register(domain.KindTask, tasks)

	return ledger, tasks, repo
}

func TestSoftDeleteWritesTombstone(t *testing.T) {
	ledger, tasks, repo := newTestLedger()
	ctx := context.Background()

	entry, err := ledger.SoftDelete(ctx, "staff-a", domain.KindTask, "task-1")
	require.NoError(t, err)

	assert.True(t, tasks.records["task-1"].SoftDeleted)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, domain.KindTask, entry.Kind)
	assert.Equal(t, "task-1", entry.EntityID)
	assert.Equal(t, "staff-a", entry.ActorID)
	assert.Len(t, repo.entries, 1)
}

func TestSoftDeleteAssignsDistinctTombstoneIDs(t *testing.T) {
	ledger, tasks, repo := newTestLedger()
	ctx := context.Background()
	tasks.records["task-2"] = &record{ID: "task-2", Owner: "staff-a", Payload: "second"}

	e1, err := ledger.SoftDelete(ctx, "staff-a", domain.KindTask, "task-1")
	require.NoError(t, err)
	e2, err := ledger.SoftDelete(ctx, "staff-a", domain.KindTask, "task-2")
	require.NoError(t, err)

	assert.NotEmpty(t, e1.ID)
	assert.NotEmpty(t, e2.ID)
	assert.NotEqual(t, e1.ID, e2.ID)
	assert.Len(t, repo.entries, 2)
}

func TestSoftDeletePermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("non-owner staff is forbidden", func(t *testing.T) {
		ledger, _, _ := newTestLedger()
		_, err := ledger.SoftDelete(ctx, "staff-b", domain.KindTask, "task-1")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("admin may trash anything", func(t *testing.T) {
		ledger, tasks, _ := newTestLedger()
		_, err := ledger.SoftDelete(ctx, "admin-1", domain.KindTask, "task-1")
		require.NoError(t, err)
		assert.True(t, tasks.records["task-1"].SoftDeleted)
	})

	t.Run("ownerless kinds are admin-only", func(t *testing.T) {
		ledger, _, _ := newTestLedger()
		teams := &adminOnlyStore{inner: newMemStore()}
		teams.inner.records["team-1"] = &record{ID: "team-1"}
		ledger.Register(domain.KindTeam, teams)

		_, err := ledger.SoftDelete(ctx, "staff-a", domain.KindTeam, "team-1")
		assert.ErrorIs(t, err, domain.ErrForbidden)

		_, err = ledger.SoftDelete(ctx, "admin-1", domain.KindTeam, "team-1")
		require.NoError(t, err)
	})
}

func TestSoftDeleteFlagFailureLeavesNoTombstone(t *testing.T) {
	ledger, tasks, repo := newTestLedger()
	tasks.flagErr = fmt.Errorf("storage down")

	_, err := ledger.SoftDelete(context.Background(), "staff-a", domain.KindTask, "task-1")
	require.Error(t, err)
	assert.Empty(t, repo.entries, "no orphan tombstone after failed flag flip")
}

func TestSoftDeleteUnregisteredKind(t *testing.T) {
	ledger, _, _ := newTestLedger()
	_, err := ledger.SoftDelete(context.Background(), "admin-1", domain.KindCall, "call-1")
	assert.ErrorIs(t, err, domain.ErrKindNotRegistered)
}

func TestRestoreRoundTrip(t *testing.T) {
	ledger, tasks, repo := newTestLedger()
	ctx := context.Background()

	before := *tasks.records["task-1"]

	entry, err := ledger.SoftDelete(ctx, "staff-a", domain.KindTask, "task-1")
	require.NoError(t, err)

	require.NoError(t, ledger.Restore(ctx, "staff-a", domain.KindTask, entry.ID))

	after := tasks.records["task-1"]
	assert.False(t, after.SoftDeleted)
	assert.Equal(t, before.Payload, after.Payload, "restore must not touch other fields")
	assert.Empty(t, repo.entries, "tombstone removed on restore")
}

func TestRestoreMissingTombstone(t *testing.T) {
	ledger, _, _ := newTestLedger()
	err := ledger.Restore(context.Background(), "staff-a", domain.KindTask, "no-such-id")
	assert.ErrorIs(t, err, domain.ErrTombstoneNotFound)
}

func TestRestoreWrongActorIsNotFound(t *testing.T) {
	ledger, _, _ := newTestLedger()
	ctx := context.Background()

	entry, err := ledger.SoftDelete(ctx, "staff-a", domain.KindTask, "task-1")
	require.NoError(t, err)

	err = ledger.Restore(ctx, "staff-b", domain.KindTask, entry.ID)
	assert.ErrorIs(t, err, domain.ErrTombstoneNotFound)
}

func TestRestoreDanglingRecordFails(t *testing.T) {
	ledger, tasks, repo := newTestLedger()
	ctx := context.Background()

	entry, err := ledger.SoftDelete(ctx, "staff-a", domain.KindTask, "task-1")
	require.NoError(t, err)

	// Another path hard-deletes the record out from under the tombstone.
	delete(tasks.records, "task-1")

	err = ledger.Restore(ctx, "staff-a", domain.KindTask, entry.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, repo.entries, 1, "tombstone kept when restore fails")
}

func TestPurge(t *testing.T) {
	ledger, tasks, repo := newTestLedger()
	ctx := context.Background()

	entry, err := ledger.SoftDelete(ctx, "staff-a", domain.KindTask, "task-1")
	require.NoError(t, err)

	require.NoError(t, ledger.Purge(ctx, "staff-a", domain.KindTask, entry.ID))

	assert.NotContains(t, tasks.records, "task-1")
	assert.Empty(t, repo.entries)

	// Purge on the now-missing tombstone never silently succeeds.
	err = ledger.Purge(ctx, "staff-a", domain.KindTask, entry.ID)
	assert.ErrorIs(t, err, domain.ErrTombstoneNotFound)
}

func TestListTrashHydration(t *testing.T) {
	ledger, tasks, _ := newTestLedger()
	ctx := context.Background()
	tasks.records["task-2"] = &record{ID: "task-2", Owner: "staff-a", Payload: "second"}

	e1, err := ledger.SoftDelete(ctx, "staff-a", domain.KindTask, "task-1")
	require.NoError(t, err)
	_, err = ledger.SoftDelete(ctx, "staff-a", domain.KindTask, "task-2")
	require.NoError(t, err)

	// task-1 vanishes through another path; its tombstone must survive
	// listing with a nil payload.
	delete(tasks.records, "task-1")

	hydrated, err := ledger.ListTrash(ctx, domain.ListTrashParams{ActorID: "staff-a"})
	require.NoError(t, err)
	require.Len(t, hydrated, 2)

	byEntity := make(map[string]domain.HydratedTrashEntry)
	for _, h := range hydrated {
		byEntity[h.Entry.EntityID] = h
	}

	assert.Nil(t, byEntity["task-1"].Payload, "dangling tombstone surfaces with nil payload")
	assert.Equal(t, e1.ID, byEntity["task-1"].Entry.ID)
	require.NotNil(t, byEntity["task-2"].Payload)
	assert.Equal(t, "second", byEntity["task-2"].Payload.(*record).Payload)
}

func TestListTrashFilters(t *testing.T) {
	ledger, tasks, _ := newTestLedger()
	ctx := context.Background()
	tasks.records["task-2"] = &record{ID: "task-2", Owner: "staff-b", Payload: "other"}

	_, err := ledger.SoftDelete(ctx, "staff-a", domain.KindTask, "task-1")
	require.NoError(t, err)
	_, err = ledger.SoftDelete(ctx, "staff-b", domain.KindTask, "task-2")
	require.NoError(t, err)

	t.Run("scoped to actor", func(t *testing.T) {
		hydrated, err := ledger.ListTrash(ctx, domain.ListTrashParams{ActorID: "staff-a"})
		require.NoError(t, err)
		require.Len(t, hydrated, 1)
		assert.Equal(t, "task-1", hydrated[0].Entry.EntityID)
	})

	t.Run("kind filter", func(t *testing.T) {
		hydrated, err := ledger.ListTrash(ctx, domain.ListTrashParams{
			ActorID: "staff-a",
			Kind:    ptr.To(domain.KindContact),
		})
		require.NoError(t, err)
		assert.Empty(t, hydrated)
	})

	t.Run("date range filter", func(t *testing.T) {
		hydrated, err := ledger.ListTrash(ctx, domain.ListTrashParams{
			ActorID:      "staff-a",
			DeletedAfter: ptr.To(time.Now().UTC().Add(time.Hour)),
		})
		require.NoError(t, err)
		assert.Empty(t, hydrated)
	})
}
