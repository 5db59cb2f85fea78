package dedup

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSQLiteStore_CheckAndSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dedup.db")
	store, err := NewSQLiteStore(path, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	now := time.Unix(1700000000, 0)
	ttl := 600 * time.Second

	t.Run("first delivery is accepted", func(t *testing.T) {
		seen, err := store.CheckAndSet("ev-1", now, ttl)
		require.NoError(t, err)
		assert.False(t, seen)
	})

	t.Run("repeat delivery within TTL is rejected", func(t *testing.T) {
		seen, err := store.CheckAndSet("ev-1", now.Add(time.Second), ttl)
		require.NoError(t, err)
		assert.True(t, seen)
	})

	t.Run("key is new again at exactly the TTL boundary", func(t *testing.T) {
		seen, err := store.CheckAndSet("ev-boundary", now, ttl)
		require.NoError(t, err)
		require.False(t, seen)

		seen, err = store.CheckAndSet("ev-boundary", now.Add(ttl), ttl)
		require.NoError(t, err)
		assert.False(t, seen)
	})

	t.Run("key is new again after expiry", func(t *testing.T) {
		seen, err := store.CheckAndSet("ev-1", now.Add(ttl+time.Second), ttl)
		require.NoError(t, err)
		assert.False(t, seen)
	})
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dedup.db")
	now := time.Unix(1700000000, 0)
	ttl := 600 * time.Second

	store, err := NewSQLiteStore(path, zap.NewNop())
	require.NoError(t, err)

	seen, err := store.CheckAndSet("ev-1", now, ttl)
	require.NoError(t, err)
	require.False(t, seen)
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	seen, err = reopened.CheckAndSet("ev-1", now.Add(time.Second), ttl)
	require.NoError(t, err)
	assert.True(t, seen, "dedup history should survive a restart with the sqlite backend")
}
