package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/colorstudio/server/internal/model"
	"github.com/colorstudio/server/internal/port/inbound"
)

// orderHandler implements inbound.OrderHttpPort.
type orderHandler struct {
	orderDomain inbound.OrderDomain
	logger      *zap.Logger
}

// NewOrderHandler creates a new print order HTTP handler.
func NewOrderHandler(orderDomain inbound.OrderDomain, logger *zap.Logger) inbound.OrderHttpPort {
	return &orderHandler{orderDomain: orderDomain, logger: logger}
}

func (h *orderHandler) GetPrintOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.orderDomain.PrintOptions())
}

func (h *orderHandler) CreateOrder(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var req inbound.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderDomain.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, order.ToResponse())
}

func (h *orderHandler) ListOrders(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	orders, err := h.orderDomain.ListOrders(c.Request.Context(), userID, limitQuery(c))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	resp := make([]*model.PrintOrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = o.ToResponse()
	}
	c.JSON(http.StatusOK, gin.H{"orders": resp})
}

func (h *orderHandler) GetOrder(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderDomain.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, order.ToResponse())
}

// Compile-time check
var _ inbound.OrderHttpPort = (*orderHandler)(nil)
