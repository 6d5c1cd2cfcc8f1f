package inbound

import (
	"context"
	"time"

	"github.com/colorstudio/server/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerDomain defines the credit ledger inbound port.
type LedgerDomain interface {
	// DecideFunding reports how the next generation would be paid for. It never writes.
	DecideFunding(ctx context.Context, userID uuid.UUID) (model.Funding, error)

	// Reserve decides and debits the funding for attempt and persists it as pending.
	Reserve(ctx context.Context, attempt *model.GenerationAttempt) (model.Funding, error)

	// Settle completes a pending attempt and counts the generation.
	Settle(ctx context.Context, attemptID uuid.UUID, imageURL string) (*model.UserCredit, error)

	// Release fails a pending attempt and refunds its reservation.
	Release(ctx context.Context, attemptID uuid.UUID, reason string) error

	// ReleaseStale releases attempts left pending longer than olderThan.
	ReleaseStale(ctx context.Context, olderThan time.Duration) (int, error)

	GetBalance(ctx context.Context, userID uuid.UUID) (*model.UserCredit, error)
	AddCredits(ctx context.Context, userID uuid.UUID, amountCents int64, source model.CreditTopUpSource) (*model.UserCredit, error)
	UnitCostCents() int64
}

// ===== Credits HTTP Ports =====

// CreditsHttpPort defines credits HTTP handler interface.
type CreditsHttpPort interface {
	// GetBalance handles GET /api/v1/credits.
	GetBalance(c *gin.Context)

	// AddCredits handles POST /api/v1/admin/credits.
	AddCredits(c *gin.Context)
}
