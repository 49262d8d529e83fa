package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igmonthly/pkg/config"
	errs "igmonthly/pkg/errors"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := NewStore(&config.SessionConfig{
		Directory: t.TempDir(),
		TTL:       ttl,
	})
	require.NoError(t, err)
	return store
}

func TestStoreSaveAndLoad(t *testing.T) {
	store := newTestStore(t, 24*time.Hour)

	blob := []byte(`{"uuids":{"phone_id":"abc"},"user_id":42}`)
	require.NoError(t, store.Save("alice", blob))

	assert.True(t, store.IsValid("alice"))

	loaded, err := store.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, blob, loaded)
}

func TestStoreFilePermissions(t *testing.T) {
	store := newTestStore(t, 24*time.Hour)
	require.NoError(t, store.Save("alice", []byte("{}")))

	info, err := os.Stat(store.Path("alice"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStorePathNaming(t *testing.T) {
	store := newTestStore(t, 24*time.Hour)
	assert.Equal(t, "session_alice.json", filepath.Base(store.Path("alice")))
}

func TestStoreMissingSession(t *testing.T) {
	store := newTestStore(t, 24*time.Hour)

	assert.False(t, store.IsValid("ghost"))

	_, err := store.Load("ghost")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindSessionExpired))
}

func TestStoreExpiredSession(t *testing.T) {
	store := newTestStore(t, 24*time.Hour)
	require.NoError(t, store.Save("alice", []byte("{}")))

	// Age the file past the 86400s TTL.
	old := time.Now().Add(-25 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path("alice"), old, old))

	assert.False(t, store.IsValid("alice"))

	_, err := store.Load("alice")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindSessionExpired))
}

func TestStoreCorruptSession(t *testing.T) {
	store := newTestStore(t, 24*time.Hour)
	require.NoError(t, os.WriteFile(store.Path("alice"), nil, 0600))

	_, err := store.Load("alice")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindSessionCorrupt))
}

func TestEvictIfExpired(t *testing.T) {
	store := newTestStore(t, 24*time.Hour)
	require.NoError(t, store.Save("alice", []byte("{}")))

	// Fresh file stays.
	require.NoError(t, store.EvictIfExpired("alice"))
	_, err := os.Stat(store.Path("alice"))
	assert.NoError(t, err)

	// Expired file goes.
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path("alice"), old, old))
	require.NoError(t, store.EvictIfExpired("alice"))
	_, err = os.Stat(store.Path("alice"))
	assert.True(t, os.IsNotExist(err))

	// Missing file is a no-op.
	require.NoError(t, store.EvictIfExpired("alice"))
}

func TestStoreSaveOverwrites(t *testing.T) {
	store := newTestStore(t, 24*time.Hour)
	require.NoError(t, store.Save("alice", []byte("first")))
	require.NoError(t, store.Save("alice", []byte("second")))

	loaded, err := store.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), loaded)
}
