package gcs

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rostam/opsdesk/internal/storage"
	"github.com/rostam/opsdesk/internal/storage/compliance"
)

func TestGCSStoreCompliance(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET not set, skipping GCS tests")
	}

	compliance.RunBlobStoreComplianceTest(t, func() (storage.BlobStore, func()) {
		ctx := context.Background()

		store, err := NewStore(ctx, bucket)
		require.NoError(t, err)

		cleanup := func() {
			cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			keys, err := store.List(cleanupCtx, "")
			if err != nil {
				t.Logf("Warning: failed to list objects during cleanup: %v", err)
				return
			}
			for _, key := range keys {
				if err := store.Delete(cleanupCtx, key); err != nil {
					t.Logf("Warning: failed to delete object %s: %v", key, err)
				}
			}
		}
		return store, cleanup
	})
}
