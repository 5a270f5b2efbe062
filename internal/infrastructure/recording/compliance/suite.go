// Package compliance holds the behavior every recording store must share.
package compliance

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskflow/internal/application/meeting"
	"github.com/rezkam/taskflow/internal/domain"
)

// RunRecordingStoreComplianceTest runs a standard set of tests against a RecordingStore.
// setup returns a fresh store and a cleanup function.
func RunRecordingStoreComplianceTest(t *testing.T, setup func() (meeting.RecordingStore, func())) {
	t.Run("SaveAndOpen", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := "recordings/" + uuid.NewString()
		audio := []byte("\x1aE\xdf\xa3 webm payload")

		location, err := store.Save(ctx, key, bytes.NewReader(audio), "audio/webm")
		require.NoError(t, err)
		assert.NotEmpty(t, location)

		rc, err := store.Open(ctx, key)
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, audio, data)
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := "recordings/" + uuid.NewString()
		_, err := store.Save(ctx, key, bytes.NewReader([]byte("first")), "audio/webm")
		require.NoError(t, err)
		_, err = store.Save(ctx, key, bytes.NewReader([]byte("second")), "audio/webm")
		require.NoError(t, err)

		rc, err := store.Open(ctx, key)
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))
	})

	t.Run("OpenMissing", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()

		_, err := store.Open(context.Background(), "recordings/"+uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrRecordingNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := "recordings/" + uuid.NewString()
		_, err := store.Save(ctx, key, bytes.NewReader([]byte("audio")), "audio/webm")
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, key))
		_, err = store.Open(ctx, key)
		assert.ErrorIs(t, err, domain.ErrRecordingNotFound)

		// Deleting again is a no-op.
		assert.NoError(t, store.Delete(ctx, key))
	})
}
