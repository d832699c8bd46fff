package compliance

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rostam/opsdesk/internal/storage"
)

// RunBlobStoreComplianceTest runs a standard set of tests against a
// BlobStore implementation. setup returns a fresh (clean) store for each
// subtest; the returned cleanup is called afterwards.
func RunBlobStoreComplianceTest(t *testing.T, setup func() (storage.BlobStore, func())) {
	t.Run("PutAndGet", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := "contacts/" + uuid.NewString()
		require.NoError(t, store.Put(ctx, key, []byte("portrait bytes")))

		data, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("portrait bytes"), data)
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := "contacts/" + uuid.NewString()
		require.NoError(t, store.Put(ctx, key, []byte("v1")))
		require.NoError(t, store.Put(ctx, key, []byte("v2")))

		data, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), data)
	})

	t.Run("GetMissing", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()

		_, err := store.Get(context.Background(), "contacts/"+uuid.NewString())
		assert.ErrorIs(t, err, storage.ErrBlobNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := "contacts/" + uuid.NewString()
		require.NoError(t, store.Put(ctx, key, []byte("portrait bytes")))
		require.NoError(t, store.Delete(ctx, key))

		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, storage.ErrBlobNotFound)

		assert.ErrorIs(t, store.Delete(ctx, key), storage.ErrBlobNotFound)
	})

	t.Run("ListByPrefix", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		require.NoError(t, store.Put(ctx, "contacts/a", []byte("a")))
		require.NoError(t, store.Put(ctx, "contacts/b", []byte("b")))
		require.NoError(t, store.Put(ctx, "tasks/c", []byte("c")))

		keys, err := store.List(ctx, "contacts/")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"contacts/a", "contacts/b"}, keys)
	})
}
