package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/colorstudio/server/internal/port/outbound"
)

const (
	idempotencyKeyPrefix  = "colorstudio:idempotency:"
	idempotencyLockSuffix = ":lock"
)

// idempotencyStore implements outbound.IdempotencyStorePort.
type idempotencyStore struct {
	client redis.UniversalClient
}

// NewIdempotencyStore creates a Redis-backed idempotency store.
func NewIdempotencyStore(client redis.UniversalClient) outbound.IdempotencyStorePort {
	return &idempotencyStore{client: client}
}

func (s *idempotencyStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, outbound.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotent response: %w", err)
	}
	return data, nil
}

func (s *idempotencyStore) Save(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, idempotencyKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("set idempotent response: %w", err)
	}
	return nil
}

func (s *idempotencyStore) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, idempotencyKeyPrefix+key+idempotencyLockSuffix, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lock idempotency key: %w", err)
	}
	return ok, nil
}

func (s *idempotencyStore) Unlock(ctx context.Context, key string) error {
	return s.client.Del(ctx, idempotencyKeyPrefix+key+idempotencyLockSuffix).Err()
}

// Compile-time check
var _ outbound.IdempotencyStorePort = (*idempotencyStore)(nil)
