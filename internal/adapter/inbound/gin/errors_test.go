package gin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colorstudio/server/internal/domain/generation"
	"github.com/colorstudio/server/internal/domain/ledger"
	"github.com/colorstudio/server/internal/domain/order"
)

func TestToAppError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"insufficient credits", generation.ErrInsufficientCredits, http.StatusPaymentRequired, "Insufficient credits"},
		{"provider failure", &generation.FailureError{Reason: "image generation timed out after 1m0s", Err: context.DeadlineExceeded}, http.StatusInternalServerError, "image generation timed out after 1m0s"},
		{"storage", fmt.Errorf("%w: connection refused", generation.ErrStorage), http.StatusInternalServerError, "Failed to create generation attempt"},
		{"invalid image", generation.ErrInvalidImage, http.StatusBadRequest, generation.ErrInvalidImage.Error()},
		{"attempt not found", generation.ErrAttemptNotFound, http.StatusNotFound, "Generation attempt not found"},
		{"invalid amount", ledger.ErrInvalidAmount, http.StatusBadRequest, ledger.ErrInvalidAmount.Error()},
		{"order not found", order.ErrOrderNotFound, http.StatusNotFound, "Order not found"},
		{"shipping", &order.ShippingFieldError{Field: "city"}, http.StatusBadRequest, "shipping city is missing or invalid"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := toAppError(tt.err)
			assert.Equal(t, tt.status, appErr.StatusCode)
			assert.Equal(t, tt.message, appErr.ToResponse().Error)
		})
	}
}

func TestToAppError_PaymentRequiredBody(t *testing.T) {
	resp := toAppError(ledger.ErrInsufficientCredits).ToResponse()

	assert.True(t, resp.NeedsPayment)
	assert.Equal(t, "You've used all your free generations. Purchase credits to continue.", resp.Message)
}
