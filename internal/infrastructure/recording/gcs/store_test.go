package gcs

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/iterator"

	"github.com/rezkam/taskflow/internal/application/meeting"
	"github.com/rezkam/taskflow/internal/infrastructure/recording/compliance"
)

func TestGCSStore_Compliance(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET not set, skipping GCS tests")
	}

	compliance.RunRecordingStoreComplianceTest(t, func() (meeting.RecordingStore, func()) {
		// Assumes Application Default Credentials with access to the bucket.
		store, err := NewStore(context.Background(), bucket)
		require.NoError(t, err)

		cleanup := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			it := store.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: "recordings/"})
			for {
				attrs, err := it.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					t.Logf("Warning: failed to list objects during cleanup: %v", err)
					break
				}
				if err := store.Delete(ctx, attrs.Name); err != nil {
					t.Logf("Warning: failed to delete object %s: %v", attrs.Name, err)
				}
			}
			store.Close()
		}

		return store, cleanup
	})
}
