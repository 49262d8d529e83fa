package auth

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igmonthly/pkg/config"
)

func newTestFreezeStore(t *testing.T) *FreezeStore {
	t.Helper()
	store, err := NewFreezeStore(&config.SessionConfig{
		Directory: t.TempDir(),
		TTL:       24 * time.Hour,
	})
	require.NoError(t, err)
	return store
}

func TestFreezeStoreSetAndActive(t *testing.T) {
	store := newTestFreezeStore(t)

	require.NoError(t, store.Set("alice", "Please wait a few minutes", time.Hour))

	frozen, err := store.Active("alice")
	require.NoError(t, err)
	require.NotNil(t, frozen)
	assert.Equal(t, "alice", frozen.Username)
	assert.Equal(t, "Please wait a few minutes", frozen.Reason)
	assert.False(t, frozen.Indefinite)
	assert.WithinDuration(t, time.Now().Add(time.Hour), frozen.Until, 5*time.Second)
}

func TestFreezeStoreExpiredIsInactiveButKept(t *testing.T) {
	store := newTestFreezeStore(t)

	require.NoError(t, store.Set("alice", "old cooldown", -time.Hour))

	frozen, err := store.Active("alice")
	require.NoError(t, err)
	assert.Nil(t, frozen, "expired freeze should not be active")

	// The record stays on disk for status inspection.
	kept, err := store.Get("alice")
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, "old cooldown", kept.Reason)
}

func TestFreezeStoreIndefinite(t *testing.T) {
	store := newTestFreezeStore(t)

	require.NoError(t, store.SetIndefinite("alice", "Your account has been temporarily blocked"))

	frozen, err := store.Active("alice")
	require.NoError(t, err)
	require.NotNil(t, frozen)
	assert.True(t, frozen.Indefinite)
	assert.False(t, frozen.Expired(time.Now().Add(1000*time.Hour)))
}

func TestFreezeStoreClear(t *testing.T) {
	store := newTestFreezeStore(t)

	require.NoError(t, store.Set("alice", "cooldown", time.Hour))
	require.NoError(t, store.Clear("alice"))

	frozen, err := store.Active("alice")
	require.NoError(t, err)
	assert.Nil(t, frozen)

	// Clearing a missing freeze is a no-op.
	assert.NoError(t, store.Clear("nobody"))
}

func TestFreezeStoreMissingUser(t *testing.T) {
	store := newTestFreezeStore(t)

	frozen, err := store.Get("ghost")
	require.NoError(t, err)
	assert.Nil(t, frozen)
}

func TestFreezeStorePathNaming(t *testing.T) {
	store := newTestFreezeStore(t)
	assert.Equal(t, "freeze_alice.json", filepath.Base(store.Path("alice")))
}
