// internal/domain/checkout/idempotency_test.go
package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdemStore(t *testing.T) (*RedisIdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisIdempotencyStore(client, time.Hour), mr
}

func TestIdempotencyStore_FirstReserveWins(t *testing.T) {
	store, _ := newIdemStore(t)
	ctx := context.Background()

	ok, orderID, err := store.Reserve(ctx, 1, "key-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, orderID)

	// Second attempt while the first is in flight.
	ok, orderID, err = store.Reserve(ctx, 1, "key-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, orderID)
}

func TestIdempotencyStore_CompletedKeyReturnsOrderID(t *testing.T) {
	store, _ := newIdemStore(t)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, 1, "key-1")
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, 1, "key-1", 42))

	ok, orderID, err := store.Reserve(ctx, 1, "key-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint(42), orderID)
}

func TestIdempotencyStore_ReleaseAllowsRetry(t *testing.T) {
	store, _ := newIdemStore(t)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, 1, "key-1")
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, 1, "key-1"))

	ok, _, err := store.Reserve(ctx, 1, "key-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIdempotencyStore_KeysAreScopedPerUser(t *testing.T) {
	store, _ := newIdemStore(t)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, 1, "key-1")
	require.NoError(t, err)

	ok, _, err := store.Reserve(ctx, 2, "key-1")
	require.NoError(t, err)
	assert.True(t, ok, "the same key from another user is a distinct reservation")
}

func TestIdempotencyStore_ExpiredKeyCanBeReclaimed(t *testing.T) {
	store, mr := newIdemStore(t)
	ctx := context.Background()

	_, _, err := store.Reserve(ctx, 1, "key-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	ok, _, err := store.Reserve(ctx, 1, "key-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
