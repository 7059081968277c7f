package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// idemPending marks a key claimed by an in-flight placement. Order IDs are
// UUIDs, so the marker can never collide with a recorded order.
const idemPending = "pending"

// IdempotencyStore maps client idempotency keys to the order they created,
// for a bounded retention window. A key is claimed atomically before the
// placement starts, so concurrent calls with the same key resolve to exactly
// one owner.
type IdempotencyStore interface {
	// Claim atomically takes ownership of the key. It returns owned=true
	// when the caller is the first claimant; otherwise orderID carries the
	// recorded order, or "" while the owning placement is still in flight.
	Claim(ctx context.Context, userID, key string, ttl time.Duration) (owned bool, orderID string, err error)
	// Get returns the order ID recorded for the key, or "" if the key is
	// absent or its placement has not finished.
	Get(ctx context.Context, userID, key string) (string, error)
	// Set records the order created under the key.
	Set(ctx context.Context, userID, key, orderID string, ttl time.Duration) error
	// Release gives up a claim whose placement failed, so a retry with the
	// same key can run.
	Release(ctx context.Context, userID, key string) error
}

// RedisIdempotencyStore keeps idempotency keys in Redis with a TTL.
type RedisIdempotencyStore struct {
	client *redis.Client
}

// NewRedisIdempotencyStore creates a Redis-backed idempotency store.
func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

func idemKey(userID, key string) string {
	return fmt.Sprintf("idem:order:%s:%s", userID, key)
}

func (s *RedisIdempotencyStore) Claim(ctx context.Context, userID, key string, ttl time.Duration) (bool, string, error) {
	ok, err := s.client.SetNX(ctx, idemKey(userID, key), idemPending, ttl).Result()
	if err != nil {
		return false, "", err
	}
	if ok {
		return true, "", nil
	}
	orderID, err := s.Get(ctx, userID, key)
	if err != nil {
		return false, "", err
	}
	return false, orderID, nil
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, userID, key string) (string, error) {
	val, err := s.client.Get(ctx, idemKey(userID, key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if val == idemPending {
		return "", nil
	}
	return val, nil
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, userID, key, orderID string, ttl time.Duration) error {
	return s.client.Set(ctx, idemKey(userID, key), orderID, ttl).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, userID, key string) error {
	return s.client.Del(ctx, idemKey(userID, key)).Err()
}
