package memory

import (
	"context"
	"sync"
	"time"

	"github.com/colorstudio/server/internal/port/outbound"
)

type expiringValue struct {
	data      []byte
	expiresAt time.Time
}

// IdempotencyStore implements outbound.IdempotencyStorePort for single-instance deployments.
type IdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]expiringValue
	locks   map[string]time.Time
	now     func() time.Time
}

// NewIdempotencyStore creates an empty store.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		entries: make(map[string]expiringValue),
		locks:   make(map[string]time.Time),
		now:     time.Now,
	}
}

var _ outbound.IdempotencyStorePort = (*IdempotencyStore)(nil)

// Load implements outbound.IdempotencyStorePort.
func (s *IdempotencyStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[key]
	if !ok || s.now().After(v.expiresAt) {
		delete(s.entries, key)
		return nil, outbound.ErrRecordNotFound
	}
	return v.data, nil
}

// Save implements outbound.IdempotencyStorePort.
func (s *IdempotencyStore) Save(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = expiringValue{data: append([]byte(nil), data...), expiresAt: s.now().Add(ttl)}
	return nil
}

// Lock implements outbound.IdempotencyStorePort.
func (s *IdempotencyStore) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exp, ok := s.locks[key]; ok && s.now().Before(exp) {
		return false, nil
	}
	s.locks[key] = s.now().Add(ttl)
	return true, nil
}

// Unlock implements outbound.IdempotencyStorePort.
func (s *IdempotencyStore) Unlock(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.locks, key)
	return nil
}
