package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Set(ctx, "greeting", "hello", time.Minute)
	require.NoError(t, err)

	var out string
	found, err := store.Get(ctx, "greeting", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "hello", out)

	found, err = store.Get(ctx, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_SetOverwritesValueAndTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryStore(WithClock(func() time.Time { return now }))

	require.NoError(t, store.Set(ctx, "code", "111111", time.Minute))
	require.NoError(t, store.Set(ctx, "code", "222222", 5*time.Minute))

	var out string
	found, err := store.Get(ctx, "code", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "222222", out)

	ttl, ok, err := store.TTL(ctx, "code")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5*time.Minute, ttl)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryStore(WithClock(func() time.Time { return now }))

	require.NoError(t, store.Set(ctx, "code", "123456", time.Minute))

	now = now.Add(time.Minute + time.Second)

	var out string
	found, err := store.Get(ctx, "code", &out)
	require.NoError(t, err)
	assert.False(t, found)

	exists, err := store.Exists(ctx, "code")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "code", "123456", 0))
	require.NoError(t, store.Delete(ctx, "code"))
	require.NoError(t, store.Delete(ctx, "code"))

	exists, err := store.Exists(ctx, "code")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStore_IncrementWithTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryStore(WithClock(func() time.Time { return now }))

	t.Run("creates counter at one with ttl", func(t *testing.T) {
		n, err := store.IncrementWithTTL(ctx, "attempts", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		ttl, ok, err := store.TTL(ctx, "attempts")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, time.Minute, ttl)
	})

	t.Run("keeps existing ttl on subsequent increments", func(t *testing.T) {
		n, err := store.IncrementWithTTL(ctx, "attempts", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		ttl, ok, err := store.TTL(ctx, "attempts")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, time.Minute, ttl)
	})

	t.Run("restarts from one after expiry", func(t *testing.T) {
		now = now.Add(2 * time.Minute)

		n, err := store.IncrementWithTTL(ctx, "attempts", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestMemoryStore_IncrementNonInteger(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "code", "abc", 0))

	_, err := store.Increment(ctx, "code")
	assert.Error(t, err)
}

func TestMemoryStore_TTLNoExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "pinned", 42, 0))

	ttl, ok, err := store.TTL(ctx, "pinned")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Duration(0), ttl)
}
