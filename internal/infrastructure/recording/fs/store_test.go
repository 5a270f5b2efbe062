package fs

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskflow/internal/application/meeting"
	"github.com/rezkam/taskflow/internal/domain"
	"github.com/rezkam/taskflow/internal/infrastructure/recording/compliance"
)

func TestFSStore_Compliance(t *testing.T) {
	compliance.RunRecordingStoreComplianceTest(t, func() (meeting.RecordingStore, func()) {
		store, err := NewStore(t.TempDir())
		require.NoError(t, err)
		return store, func() {}
	})
}

func TestFSStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../outside", "recordings/../../outside", "/etc/passwd"} {
		_, err := store.Save(context.Background(), key, bytes.NewReader([]byte("x")), "audio/webm")
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "key %q", key)
	}
}

func TestFSStore_LocationIsFileURL(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	location, err := store.Save(context.Background(), "recordings/m1", bytes.NewReader([]byte("x")), "audio/webm")
	require.NoError(t, err)
	assert.Contains(t, location, "file://")
	assert.Contains(t, location, "recordings/m1")
}
