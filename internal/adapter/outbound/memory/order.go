package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/outbound"
	"github.com/google/uuid"
)

// OrderStore implements outbound.OrderDatabasePort.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*model.PrintOrder
}

// NewOrderStore creates an empty in-memory order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[uuid.UUID]*model.PrintOrder)}
}

var _ outbound.OrderDatabasePort = (*OrderStore)(nil)

// Create implements outbound.OrderDatabasePort.
func (s *OrderStore) Create(ctx context.Context, order *model.PrintOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := *order
	s.orders[o.ID] = &o
	return nil
}

// GetByID implements outbound.OrderDatabasePort.
func (s *OrderStore) GetByID(ctx context.Context, id uuid.UUID) (*model.PrintOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, outbound.ErrRecordNotFound
	}
	out := *o
	return &out, nil
}

// ListByUser implements outbound.OrderDatabasePort.
func (s *OrderStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.PrintOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.PrintOrder
	for _, o := range s.orders {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
