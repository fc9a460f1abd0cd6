package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"file":   NewFile(filepath.Join(t.TempDir(), "mcvid.json")),
		"memory": NewMemory(),
	}
}

func TestStoreEmpty(t *testing.T) {
	t.Parallel()

	for name, s := range testStores(t) {
		visitorID, err := s.Get()
		require.NoError(t, err, name)
		assert.Equal(t, "", visitorID, name)

		advertisingID, err := s.SyncedAdvertisingID()
		require.NoError(t, err, name)
		assert.Equal(t, "", advertisingID, name)
	}
}

func TestStoreSetGetDelete(t *testing.T) {
	t.Parallel()

	for name, s := range testStores(t) {
		require.NoError(t, s.Set("visitorId1"), name)
		require.NoError(t, s.SetSyncedAdvertisingID("advertisingId1"), name)

		visitorID, err := s.Get()
		require.NoError(t, err, name)
		assert.Equal(t, "visitorId1", visitorID, name)

		advertisingID, err := s.SyncedAdvertisingID()
		require.NoError(t, err, name)
		assert.Equal(t, "advertisingId1", advertisingID, name)

		require.NoError(t, s.Delete(), name)
		visitorID, err = s.Get()
		require.NoError(t, err, name)
		assert.Equal(t, "", visitorID, name)
	}
}

func TestStoreAdvertisingIDWithoutVisitorID(t *testing.T) {
	t.Parallel()

	for name, s := range testStores(t) {
		require.NoError(t, s.SetSyncedAdvertisingID("advertisingId1"), name)

		// No advertising ID is reported without a stored visitor ID
		advertisingID, err := s.SyncedAdvertisingID()
		require.NoError(t, err, name)
		assert.Equal(t, "", advertisingID, name)
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mcvid.json")
	s1 := NewFile(path)
	require.NoError(t, s1.Set("visitorId1"))
	require.NoError(t, s1.SetSyncedAdvertisingID("advertisingId1"))

	// A new instance, simulating a process restart
	s2 := NewFile(path)
	visitorID, err := s2.Get()
	require.NoError(t, err)
	assert.Equal(t, "visitorId1", visitorID)
	advertisingID, err := s2.SyncedAdvertisingID()
	require.NoError(t, err)
	assert.Equal(t, "advertisingId1", advertisingID)
}

func TestFileStoreInvalidContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mcvid.json")
	require.NoError(t, os.WriteFile(path, []byte("not a JSON"), 0o600))

	s := NewFile(path)
	_, err := s.Get()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot parse store file")
}
