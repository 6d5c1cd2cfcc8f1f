package gin

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/inbound"
)

// creditsHandler implements inbound.CreditsHttpPort.
type creditsHandler struct {
	ledgerDomain inbound.LedgerDomain
	logger       *zap.Logger
}

// NewCreditsHandler creates a new credits HTTP handler.
func NewCreditsHandler(ledgerDomain inbound.LedgerDomain, logger *zap.Logger) inbound.CreditsHttpPort {
	return &creditsHandler{ledgerDomain: ledgerDomain, logger: logger}
}

func (h *creditsHandler) GetBalance(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	credit, err := h.ledgerDomain.GetBalance(c.Request.Context(), userID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.balanceResponse(credit))
}

// addCreditsRequest is an admin top-up. Amount is in currency units.
type addCreditsRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
	Amount float64   `json:"amount" binding:"required,gt=0"`
	Source string    `json:"source"`
}

func (h *creditsHandler) AddCredits(c *gin.Context) {
	var req addCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	source := model.CreditTopUpSource(req.Source)
	if source == "" {
		source = model.CreditTopUpAdmin
	}

	amountCents := int64(math.Round(req.Amount * 100))
	credit, err := h.ledgerDomain.AddCredits(c.Request.Context(), req.UserID, amountCents, source)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, h.balanceResponse(credit))
}

func (h *creditsHandler) balanceResponse(credit *model.UserCredit) *model.CreditBalanceResponse {
	return &model.CreditBalanceResponse{
		FreeGenerationsRemaining: credit.FreeGenerationsRemaining,
		PaidCredits:              model.CentsToCurrency(credit.PaidCreditsCents),
		TotalGenerations:         credit.TotalGenerations,
		UnitCost:                 model.CentsToCurrency(h.ledgerDomain.UnitCostCents()),
	}
}

// Compile-time check
var _ inbound.CreditsHttpPort = (*creditsHandler)(nil)
