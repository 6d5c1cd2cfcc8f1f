package order

import "errors"

// Domain errors for print orders.
var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidPrintSize    = errors.New("invalid print size")
	ErrInvalidProductType  = errors.New("invalid product type")
	ErrInvalidQuantity     = errors.New("quantity must be between 1 and 10")
	ErrMissingImage        = errors.New("coloredImageUrl is required")
	ErrAttemptNotCompleted = errors.New("generation attempt is not completed")
	ErrAttemptNotFound     = errors.New("generation attempt not found")
)

// ShippingFieldError reports a missing shipping field.
type ShippingFieldError struct {
	Field string
}

func (e *ShippingFieldError) Error() string {
	return "shipping " + e.Field + " is missing or invalid"
}
