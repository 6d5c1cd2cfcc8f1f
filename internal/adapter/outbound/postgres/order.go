package postgres

import (
	"context"
	"errors"

	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/outbound"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// orderAdapter implements outbound.OrderDatabasePort.
type orderAdapter struct {
	db *gorm.DB
}

// NewOrderAdapter creates a new order database adapter.
func NewOrderAdapter(db *gorm.DB) outbound.OrderDatabasePort {
	return &orderAdapter{db: db}
}

func (a *orderAdapter) Create(ctx context.Context, order *model.PrintOrder) error {
	return a.db.WithContext(ctx).Create(order).Error
}

func (a *orderAdapter) GetByID(ctx context.Context, id uuid.UUID) (*model.PrintOrder, error) {
	var order model.PrintOrder
	err := a.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, outbound.ErrRecordNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (a *orderAdapter) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.PrintOrder, error) {
	var orders []*model.PrintOrder
	err := a.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

// Compile-time check
var _ outbound.OrderDatabasePort = (*orderAdapter)(nil)
