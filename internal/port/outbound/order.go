package outbound

import (
	"context"

	"github.com/colorstudio/server/internal/model"
	"github.com/google/uuid"
)

// OrderDatabasePort defines print order persistence operations.
type OrderDatabasePort interface {
	// Create creates a new order.
	Create(ctx context.Context, order *model.PrintOrder) error

	// GetByID gets an order by ID. Returns ErrRecordNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*model.PrintOrder, error)

	// ListByUser lists a user's orders, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.PrintOrder, error)
}
