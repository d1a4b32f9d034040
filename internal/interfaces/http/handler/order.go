package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderingapp "github.com/shadeworks/backend/internal/application/ordering"
	"github.com/shadeworks/backend/internal/domain/ordering"
	"github.com/shadeworks/backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order lifecycle API endpoints
type OrderHandler struct {
	BaseHandler
	statusService *orderingapp.StatusService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(statusService *orderingapp.StatusService) *OrderHandler {
	return &OrderHandler{
		statusService: statusService,
	}
}

// List godoc
// @ID           listOrders
// @Summary      List orders
// @Description  Returns a filtered, paginated list of orders
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Order status filter"
// @Param        customer_email query string false "Customer email filter"
// @Param        start_date query string false "Created from (YYYY-MM-DD)"
// @Param        end_date query string false "Created to (YYYY-MM-DD)"
// @Success      200 {object} dto.Response
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter orderingapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	orders, total, err := h.statusService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getOrder
// @Summary      Get an order with its status history
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.statusService.GetOrderWithHistory(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Transition godoc
// @ID           transitionOrder
// @Summary      Move an order to a new status
// @Description  Applies one transition of the order state machine and records it in the status history with the acting identity
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body orderingapp.TransitionRequest true "Target status and optional reason"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /orders/{id}/transition [post]
func (h *OrderHandler) Transition(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req orderingapp.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.statusService.Transition(
		c.Request.Context(),
		orderID,
		ordering.OrderStatus(req.NewStatus),
		getActorID(c),
		req.Reason,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// SimulatePayment godoc
// @ID           simulateOrderPayment
// @Summary      Simulate a successful payment for an order
// @Description  Marks the order as paid with a fake transaction and advances it to paid status
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /orders/{id}/payments/simulate [post]
func (h *OrderHandler) SimulatePayment(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	order, err := h.statusService.SimulateFakePayment(c.Request.Context(), orderID, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.POST("/:id/transition", h.Transition)
		orders.POST("/:id/payments/simulate", h.SimulatePayment)
	}
}
