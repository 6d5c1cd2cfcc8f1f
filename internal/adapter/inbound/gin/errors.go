package gin

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/colorstudio/server/internal/domain/generation"
	"github.com/colorstudio/server/internal/domain/ledger"
	"github.com/colorstudio/server/internal/domain/order"
	apperrors "github.com/colorstudio/server/internal/shared/errors"
	"github.com/colorstudio/server/internal/shared/logger"
)

const (
	insufficientCreditsMessage = "Insufficient credits"
	needsPaymentDetail         = "You've used all your free generations. Purchase credits to continue."
)

// toAppError maps domain errors to HTTP errors.
func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var failure *generation.FailureError
	var shippingErr *order.ShippingFieldError

	switch {
	case errors.Is(err, generation.ErrInsufficientCredits),
		errors.Is(err, ledger.ErrInsufficientCredits):
		return apperrors.PaymentRequired(insufficientCreditsMessage, needsPaymentDetail)

	case errors.As(err, &failure):
		return apperrors.Internal(failure.Reason, err)

	case errors.Is(err, generation.ErrInvalidImage),
		errors.Is(err, generation.ErrImageTooLarge):
		return apperrors.BadRequest(err.Error())

	case errors.Is(err, generation.ErrStorage):
		return apperrors.Internal("Failed to create generation attempt", err)

	case errors.Is(err, generation.ErrAttemptNotFound),
		errors.Is(err, ledger.ErrAttemptNotFound):
		return apperrors.NotFound("Generation attempt")

	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidSource):
		return apperrors.BadRequest(err.Error())

	case errors.Is(err, ledger.ErrAlreadyFinalized):
		return apperrors.Conflict("Generation attempt already finalized")

	case errors.Is(err, order.ErrOrderNotFound):
		return apperrors.NotFound("Order")

	case errors.As(err, &shippingErr),
		errors.Is(err, order.ErrInvalidPrintSize),
		errors.Is(err, order.ErrInvalidProductType),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrMissingImage),
		errors.Is(err, order.ErrAttemptNotCompleted),
		errors.Is(err, order.ErrAttemptNotFound):
		return apperrors.BadRequest(err.Error())

	default:
		return apperrors.Internal("Internal server error", err)
	}
}

// handleError writes err as a JSON error response.
// Server errors are logged with their cause before the body is sent.
func handleError(c *gin.Context, log *zap.Logger, err error) {
	appErr := toAppError(err)
	if appErr.StatusCode >= 500 && log != nil {
		logger.WithContext(c.Request.Context(), log).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", appErr.StatusCode),
			zap.Error(err),
		)
	}
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}

// badRequest writes a 400 response with message.
func badRequest(c *gin.Context, message string) {
	appErr := apperrors.BadRequest(message)
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}
