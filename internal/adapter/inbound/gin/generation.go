package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/inbound"
)

// generationHandler implements inbound.GenerationHttpPort.
type generationHandler struct {
	generationDomain inbound.GenerationDomain
	logger           *zap.Logger
}

// NewGenerationHandler creates a new generation HTTP handler.
func NewGenerationHandler(generationDomain inbound.GenerationDomain, logger *zap.Logger) inbound.GenerationHttpPort {
	return &generationHandler{generationDomain: generationDomain, logger: logger}
}

func (h *generationHandler) Generate(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var req inbound.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	result, err := h.generationDomain.Generate(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *generationHandler) ListAttempts(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	attempts, err := h.generationDomain.ListAttempts(c.Request.Context(), userID, limitQuery(c))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	resp := make([]*model.GenerationAttemptResponse, len(attempts))
	for i, a := range attempts {
		resp[i] = a.ToResponse()
	}
	c.JSON(http.StatusOK, gin.H{"attempts": resp})
}

func (h *generationHandler) GetAttempt(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	attemptID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	attempt, err := h.generationDomain.GetAttempt(c.Request.Context(), userID, attemptID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, attempt.ToResponse())
}

func (h *generationHandler) ListStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": h.generationDomain.Styles()})
}

// Compile-time check
var _ inbound.GenerationHttpPort = (*generationHandler)(nil)
