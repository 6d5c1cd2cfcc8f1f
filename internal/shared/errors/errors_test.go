package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		status  int
		message string
		cause   error
	}{
		{"unauthorized default", Unauthorized(""), http.StatusUnauthorized, "authentication required", ErrUnauthorized},
		{"forbidden", Forbidden("Admin access required"), http.StatusForbidden, "Admin access required", ErrForbidden},
		{"rate limited default", RateLimited(""), http.StatusTooManyRequests, "too many requests", ErrRateLimited},
		{"conflict", Conflict("busy"), http.StatusConflict, "busy", ErrConflict},
		{"not found", NotFound("Order"), http.StatusNotFound, "Order not found", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.message, tt.err.ToResponse().Error)
			assert.ErrorIs(t, fmt.Errorf("handler: %w", tt.err), tt.cause)
		})
	}
}

func TestPaymentRequired_ToResponse(t *testing.T) {
	resp := PaymentRequired("Insufficient credits", "Purchase credits to continue.").ToResponse()

	assert.Equal(t, "Insufficient credits", resp.Error)
	assert.True(t, resp.NeedsPayment)
	assert.Equal(t, "Purchase credits to continue.", resp.Message)
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("Failed to create generation attempt", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to create generation attempt: connection reset", err.Error())
	assert.Empty(t, err.ToResponse().Message)
	assert.False(t, err.ToResponse().NeedsPayment)
}
