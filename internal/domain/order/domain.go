package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/inbound"
	"github.com/colorstudio/server/internal/port/outbound"
	"github.com/colorstudio/server/internal/utils/pagination"
)

// Domain implements print order placement. Orders are priced server-side and
// stored awaiting payment; no payment provider is called.
type Domain struct {
	orderDB   outbound.OrderDatabasePort
	attemptDB outbound.AttemptDatabasePort
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderDomain creates a new order domain.
func NewOrderDomain(
	orderDB outbound.OrderDatabasePort,
	attemptDB outbound.AttemptDatabasePort,
	logger *zap.Logger,
) *Domain {
	return &Domain{
		orderDB:   orderDB,
		attemptDB: attemptDB,
		logger:    logger,
		now:       time.Now,
	}
}

// Compile-time interface check
var _ inbound.OrderDomain = (*Domain)(nil)

// CreateOrder validates, prices and stores a print order.
func (d *Domain) CreateOrder(ctx context.Context, userID uuid.UUID, req *inbound.CreateOrderRequest) (*model.PrintOrder, error) {
	size, ok := findPrintSize(req.PrintSize)
	if !ok {
		return nil, ErrInvalidPrintSize
	}
	productType := req.ProductType
	if productType == "" {
		productType = "frame"
	}
	if _, ok := findProduct(productType); !ok {
		return nil, ErrInvalidProductType
	}
	if req.Quantity < minQuantity || req.Quantity > maxQuantity {
		return nil, ErrInvalidQuantity
	}

	shipping, err := normalizeShipping(req.ShippingInfo)
	if err != nil {
		return nil, err
	}

	order := &model.PrintOrder{
		ID:              uuid.New(),
		UserID:          userID,
		ColoredImageURL: req.ColoredImageURL,
		SelectedStyle:   req.SelectedStyle,
		PrintSize:       size.ID,
		ProductType:     productType,
		Quantity:        req.Quantity,
		ShippingInfo:    shipping,
		Status:          model.PrintOrderStatusPendingPayment,
	}

	if req.AttemptID != nil {
		attempt, err := d.completedAttempt(ctx, userID, *req.AttemptID)
		if err != nil {
			return nil, err
		}
		order.AttemptID = &attempt.ID
		order.ColoredImageURL = attempt.GeneratedImageURL
		order.OriginalImageURL = attempt.OriginalImageURL
		order.SelectedStyle = attempt.SelectedStyle
	}
	if order.ColoredImageURL == "" {
		return nil, ErrMissingImage
	}

	subtotal := size.Price.Multiply(req.Quantity)
	total, err := subtotal.Add(shippingCost)
	if err != nil {
		return nil, err
	}
	order.UnitPriceCents = size.Price.Cents()
	order.ShippingCents = shippingCost.Cents()
	order.TotalCents = total.Cents()

	now := d.now()
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := d.orderDB.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	d.logger.Info("print order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("print_size", order.PrintSize),
		zap.String("product_type", order.ProductType),
		zap.Int("quantity", order.Quantity),
		zap.String("total", total.String()),
	)
	return order, nil
}

func (d *Domain) completedAttempt(ctx context.Context, userID, attemptID uuid.UUID) (*model.GenerationAttempt, error) {
	attempt, err := d.attemptDB.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, outbound.ErrRecordNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.UserID != userID {
		return nil, ErrAttemptNotFound
	}
	if attempt.Status != model.AttemptStatusCompleted {
		return nil, ErrAttemptNotCompleted
	}
	return attempt, nil
}

// GetOrder returns one of the user's orders.
func (d *Domain) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.PrintOrder, error) {
	order, err := d.orderDB.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, outbound.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns the user's most recent orders.
func (d *Domain) ListOrders(ctx context.Context, userID uuid.UUID, limit int) ([]*model.PrintOrder, error) {
	limit = pagination.Limit(limit, pagination.DefaultPageSize, pagination.MaxPageSize)
	orders, err := d.orderDB.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// PrintOptions returns the print catalog.
func (d *Domain) PrintOptions() *inbound.PrintOptions {
	opts := &inbound.PrintOptions{
		Sizes:    make([]inbound.PrintSizeOption, 0, len(printSizes)),
		Products: make([]inbound.ProductOption, 0, len(products)),
		Shipping: model.CentsToCurrency(shippingCost.Cents()),
	}
	for _, s := range printSizes {
		opts.Sizes = append(opts.Sizes, inbound.PrintSizeOption{
			ID:    s.ID,
			Label: s.Label,
			Price: model.CentsToCurrency(s.Price.Cents()),
		})
	}
	for _, p := range products {
		opts.Products = append(opts.Products, inbound.ProductOption{ID: p.ID, Label: p.Label})
	}
	return opts
}

func normalizeShipping(in model.ShippingInfo) (model.ShippingInfo, error) {
	out := model.ShippingInfo{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Address: strings.TrimSpace(in.Address),
		City:    strings.TrimSpace(in.City),
		State:   strings.TrimSpace(in.State),
		Zip:     strings.TrimSpace(in.Zip),
		Country: strings.ToUpper(strings.TrimSpace(in.Country)),
	}

	required := []struct {
		field string
		value string
	}{
		{"name", out.Name},
		{"email", out.Email},
		{"address", out.Address},
		{"city", out.City},
		{"zip", out.Zip},
	}
	for _, r := range required {
		if r.value == "" {
			return model.ShippingInfo{}, &ShippingFieldError{Field: r.field}
		}
	}
	if !strings.Contains(out.Email, "@") {
		return model.ShippingInfo{}, &ShippingFieldError{Field: "email"}
	}
	if out.Country == "" {
		out.Country = defaultCountry
	}
	return out, nil
}
