// internal/domain/checkout/idempotency.go
package checkout

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingMarker occupies a reservation until the order id is recorded
const pendingMarker = "pending"

// IdempotencyStore lets a retried checkout return the order the first
// attempt produced instead of placing a duplicate.
type IdempotencyStore interface {
	// Reserve claims the key. It returns reserved=true if this attempt owns
	// the key, otherwise the order id a previous attempt recorded (0 while
	// that attempt is still in flight).
	Reserve(ctx context.Context, userID uint, key string) (reserved bool, orderID uint, err error)
	// Complete records the order id under the key.
	Complete(ctx context.Context, userID uint, key string, orderID uint) error
	// Release frees the key after a failed attempt so the client can retry.
	Release(ctx context.Context, userID uint, key string) error
}

// RedisIdempotencyStore implements IdempotencyStore on Redis SETNX.
type RedisIdempotencyStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisIdempotencyStore creates a Redis-backed idempotency store
func NewRedisIdempotencyStore(redisClient *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		redis: redisClient,
		ttl:   ttl,
	}
}

func idempotencyKey(userID uint, key string) string {
	return fmt.Sprintf("checkout:idem:%d:%s", userID, key)
}

// Reserve claims the key with SETNX
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, userID uint, key string) (bool, uint, error) {
	ok, err := s.redis.SetNX(ctx, idempotencyKey(userID, key), pendingMarker, s.ttl).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if ok {
		return true, 0, nil
	}

	val, err := s.redis.Get(ctx, idempotencyKey(userID, key)).Result()
	if err == redis.Nil {
		// Expired between SETNX and GET; treat as a fresh claim next time.
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if val == pendingMarker {
		return false, 0, nil
	}

	orderID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return false, 0, fmt.Errorf("corrupt idempotency record %q: %w", val, err)
	}
	return false, uint(orderID), nil
}

// Complete overwrites the pending marker with the order id
func (s *RedisIdempotencyStore) Complete(ctx context.Context, userID uint, key string, orderID uint) error {
	err := s.redis.Set(ctx, idempotencyKey(userID, key), strconv.FormatUint(uint64(orderID), 10), s.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to record idempotency result: %w", err)
	}
	return nil
}

// Release deletes the reservation
func (s *RedisIdempotencyStore) Release(ctx context.Context, userID uint, key string) error {
	if err := s.redis.Del(ctx, idempotencyKey(userID, key)).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
