package dedup

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDeduplicator(ttl time.Duration) (*Deduplicator, *time.Time) {
	d := New(NewMemoryStore(), ttl, zap.NewNop())
	now := time.Unix(1700000000, 0)
	d.now = func() time.Time { return now }
	return d, &now
}

func TestDeduplicator_IsDuplicate(t *testing.T) {
	t.Run("second delivery within TTL is a duplicate", func(t *testing.T) {
		d, _ := newTestDeduplicator(600 * time.Second)

		assert.False(t, d.IsDuplicate("ev-1"))
		assert.True(t, d.IsDuplicate("ev-1"))
	})

	t.Run("distinct keys do not collide", func(t *testing.T) {
		d, _ := newTestDeduplicator(600 * time.Second)

		assert.False(t, d.IsDuplicate("ev-1"))
		assert.False(t, d.IsDuplicate("ev-2"))
	})

	t.Run("key is new again after TTL expiry", func(t *testing.T) {
		d, now := newTestDeduplicator(600 * time.Second)

		assert.False(t, d.IsDuplicate("ev-1"))

		*now = now.Add(601 * time.Second)
		assert.False(t, d.IsDuplicate("ev-1"))
		assert.True(t, d.IsDuplicate("ev-1"))
	})

	t.Run("key is new again at exactly the TTL boundary", func(t *testing.T) {
		d, now := newTestDeduplicator(600 * time.Second)

		assert.False(t, d.IsDuplicate("ev-1"))

		*now = now.Add(600 * time.Second)
		assert.False(t, d.IsDuplicate("ev-1"))
	})

	t.Run("still duplicate just inside the TTL window", func(t *testing.T) {
		d, now := newTestDeduplicator(600 * time.Second)

		assert.False(t, d.IsDuplicate("ev-1"))

		*now = now.Add(599 * time.Second)
		assert.True(t, d.IsDuplicate("ev-1"))
	})

	t.Run("empty identity key fails open", func(t *testing.T) {
		d, _ := newTestDeduplicator(600 * time.Second)

		assert.False(t, d.IsDuplicate(""))
		assert.False(t, d.IsDuplicate(""))
	})
}

func TestMemoryStore_ConcurrentCheckAndSet(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(1700000000, 0)

	const deliveries = 50
	var wg sync.WaitGroup
	accepted := make(chan struct{}, deliveries)

	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen, err := store.CheckAndSet("burst-key", now, 600*time.Second)
			require.NoError(t, err)
			if !seen {
				accepted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(accepted)

	count := 0
	for range accepted {
		count++
	}
	assert.Equal(t, 1, count, "exactly one delivery of a burst must be accepted")
}

func TestMemoryStore_LazyReap(t *testing.T) {
	store := NewMemoryStore()
	now := time.Unix(1700000000, 0)

	_, err := store.CheckAndSet("old", now, 600*time.Second)
	require.NoError(t, err)

	// A later call for a different key reaps the expired entry.
	later := now.Add(700 * time.Second)
	_, err = store.CheckAndSet("new", later, 600*time.Second)
	require.NoError(t, err)

	store.mu.Lock()
	_, oldPresent := store.entries["old"]
	store.mu.Unlock()
	assert.False(t, oldPresent, "expired entry should have been reaped")
}
