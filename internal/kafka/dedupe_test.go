package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDedupeStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryDedupeStore(time.Hour)
	defer store.Close()

	now := time.Now()
	store.now = func() time.Time { return now }

	seen, err := store.Exists(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Add(ctx, "msg-1"))
	seen, _ = store.Exists(ctx, "msg-1")
	assert.True(t, seen)

	now = now.Add(time.Hour)
	seen, _ = store.Exists(ctx, "msg-1")
	assert.False(t, seen, "expired ids are not reported")

	store.evictExpired()
	assert.Equal(t, 0, store.Len())
}

func TestInMemoryDedupeStore_CleanupLoop(t *testing.T) {
	store := newInMemoryDedupeStore(time.Millisecond, 5*time.Millisecond)
	defer store.Close()

	require.NoError(t, store.Add(context.Background(), "msg-1"))
	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestInMemoryDedupeStore_CloseTwice(t *testing.T) {
	store := NewInMemoryDedupeStore(time.Minute)
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestRedisDedupeStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisDedupeStore(client, "", time.Minute)
	defer store.Close()

	seen, err := store.Exists(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Add(ctx, "msg-1"))
	seen, err = store.Exists(ctx, "msg-1")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.True(t, mr.Exists("dedupe:msg-1"))

	mr.FastForward(2 * time.Minute)
	seen, err = store.Exists(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisDedupeStore_AddKeepsFirstExpiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisDedupeStore(client, "ids:", time.Minute)
	defer store.Close()

	require.NoError(t, store.Add(ctx, "msg-1"))
	mr.FastForward(40 * time.Second)
	require.NoError(t, store.Add(ctx, "msg-1"))
	mr.FastForward(30 * time.Second)

	seen, err := store.Exists(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisDedupeStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	store := NewRedisDedupeStore(client, "", time.Minute)
	defer store.Close()

	mr.Close()

	_, err := store.Exists(context.Background(), "msg-1")
	assert.Error(t, err)
}
