package inbound

import (
	"context"

	"github.com/colorstudio/server/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateOrderRequest is a print order as submitted by the client.
type CreateOrderRequest struct {
	// AttemptID optionally references a completed generation of the caller.
	AttemptID       *uuid.UUID         `json:"attemptId,omitempty"`
	ColoredImageURL string             `json:"coloredImageUrl"`
	SelectedStyle   string             `json:"selectedStyle"`
	PrintSize       string             `json:"printSize"`
	ProductType     string             `json:"productType"`
	Quantity        int                `json:"quantity"`
	ShippingInfo    model.ShippingInfo `json:"shippingInfo"`
}

// PrintSizeOption is one purchasable print size.
type PrintSizeOption struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// ProductOption is one product a print can be placed on.
type ProductOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// PrintOptions is the print catalog.
type PrintOptions struct {
	Sizes    []PrintSizeOption `json:"sizes"`
	Products []ProductOption   `json:"products"`
	Shipping float64           `json:"shipping"`
}

// OrderDomain defines the print order inbound port.
type OrderDomain interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req *CreateOrderRequest) (*model.PrintOrder, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.PrintOrder, error)
	ListOrders(ctx context.Context, userID uuid.UUID, limit int) ([]*model.PrintOrder, error)
	PrintOptions() *PrintOptions
}

// ===== Order HTTP Ports =====

// OrderHttpPort defines print order HTTP handler interface.
type OrderHttpPort interface {
	// GetPrintOptions handles GET /api/v1/print-options.
	GetPrintOptions(c *gin.Context)

	// CreateOrder handles POST /api/v1/orders.
	CreateOrder(c *gin.Context)

	// ListOrders handles GET /api/v1/orders.
	ListOrders(c *gin.Context)

	// GetOrder handles GET /api/v1/orders/:id.
	GetOrder(c *gin.Context)
}
