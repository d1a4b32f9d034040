package handler

import (
	"github.com/gin-gonic/gin"

	checkoutapp "github.com/shadeworks/backend/internal/application/checkout"
	"github.com/shadeworks/backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles the cart-to-order conversion endpoint
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkoutapp.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// Checkout godoc
// @ID           checkout
// @Summary      Convert a session cart into an order
// @Description  Revalidates every line's price snapshot, freezes pricing and customer details onto a new order, and clears the cart. Fails with 422 and per-line issues when any snapshot is expired or mismatched.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body checkoutapp.CheckoutRequest true "Checkout details"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /checkout [post]
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req checkoutapp.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	order, err := h.checkoutService.CreateOrderFromCart(c.Request.Context(), req, getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// RegisterRoutes registers the checkout route
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/checkout", h.Checkout)
}
