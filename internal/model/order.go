package model

import (
	"time"

	"github.com/google/uuid"
)

// PrintOrderStatus represents the status of a print order.
type PrintOrderStatus string

const (
	PrintOrderStatusPendingPayment PrintOrderStatus = "pending_payment"
	PrintOrderStatusPaid           PrintOrderStatus = "paid"
	PrintOrderStatusShipped        PrintOrderStatus = "shipped"
	PrintOrderStatusCanceled       PrintOrderStatus = "canceled"
)

// String returns the string representation of the status.
func (s PrintOrderStatus) String() string {
	return string(s)
}

// ShippingInfo is the delivery address of a print order. Stored as jsonb.
type ShippingInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// PrintOrder is a physical product ordered from a generated image.
type PrintOrder struct {
	ID               uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	AttemptID        *uuid.UUID       `json:"attempt_id,omitempty" gorm:"type:uuid"`
	OriginalImageURL string           `json:"original_image_url"`
	ColoredImageURL  string           `json:"colored_image_url" gorm:"not null"`
	SelectedStyle    string           `json:"selected_style" gorm:"not null"`
	PrintSize        string           `json:"print_size" gorm:"not null"`
	ProductType      string           `json:"product_type" gorm:"not null"`
	Quantity         int              `json:"quantity" gorm:"not null"`
	UnitPriceCents   int64            `json:"unit_price_cents" gorm:"not null"`
	ShippingCents    int64            `json:"shipping_cents" gorm:"not null"`
	TotalCents       int64            `json:"total_cents" gorm:"not null"`
	ShippingInfo     ShippingInfo     `json:"shipping_info" gorm:"type:jsonb;serializer:json;not null"`
	Status           PrintOrderStatus `json:"status" gorm:"not null"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// TableName returns the database table name.
func (PrintOrder) TableName() string {
	return "orders"
}

// PrintOrderResponse represents a print order in API responses.
type PrintOrderResponse struct {
	ID              string       `json:"id"`
	AttemptID       string       `json:"attemptId,omitempty"`
	ColoredImageURL string       `json:"coloredImageUrl"`
	SelectedStyle   string       `json:"selectedStyle"`
	PrintSize       string       `json:"printSize"`
	ProductType     string       `json:"productType"`
	Quantity        int          `json:"quantity"`
	Price           float64      `json:"price"`
	Shipping        float64      `json:"shipping"`
	Total           float64      `json:"total"`
	ShippingInfo    ShippingInfo `json:"shippingInfo"`
	Status          string       `json:"status"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// ToResponse converts PrintOrder to PrintOrderResponse.
func (o *PrintOrder) ToResponse() *PrintOrderResponse {
	resp := &PrintOrderResponse{
		ID:              o.ID.String(),
		ColoredImageURL: o.ColoredImageURL,
		SelectedStyle:   o.SelectedStyle,
		PrintSize:       o.PrintSize,
		ProductType:     o.ProductType,
		Quantity:        o.Quantity,
		Price:           CentsToCurrency(o.UnitPriceCents),
		Shipping:        CentsToCurrency(o.ShippingCents),
		Total:           CentsToCurrency(o.TotalCents),
		ShippingInfo:    o.ShippingInfo,
		Status:          o.Status.String(),
		CreatedAt:       o.CreatedAt,
	}
	if o.AttemptID != nil {
		resp.AttemptID = o.AttemptID.String()
	}
	return resp
}
