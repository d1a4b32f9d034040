package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	checkoutapp "github.com/shadeworks/backend/internal/application/checkout"
	"github.com/shadeworks/backend/internal/interfaces/http/middleware"
)

// CartHandler handles session cart API endpoints
type CartHandler struct {
	BaseHandler
	checkoutService *checkoutapp.CheckoutService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(checkoutService *checkoutapp.CheckoutService) *CartHandler {
	return &CartHandler{
		checkoutService: checkoutService,
	}
}

// AddLine godoc
// @ID           addCartLine
// @Summary      Add a line to a session cart
// @Description  Adds a configured product line, including its price snapshot, to the session cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Cart session ID"
// @Param        request body checkoutapp.AddCartLineRequest true "Cart line"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Router       /cart/{sessionId}/items [post]
func (h *CartHandler) AddLine(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		h.BadRequest(c, "Session ID is required")
		return
	}

	var req checkoutapp.AddCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	line, err := h.checkoutService.AddLine(c.Request.Context(), sessionID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, line)
}

// UpdateLine godoc
// @ID           updateCartLine
// @Summary      Change a cart line's quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        sessionId path string true "Cart session ID"
// @Param        lineId path string true "Cart line ID"
// @Param        request body checkoutapp.UpdateCartLineRequest true "New quantity"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /cart/{sessionId}/items/{lineId} [patch]
func (h *CartHandler) UpdateLine(c *gin.Context) {
	sessionID := c.Param("sessionId")
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	var req checkoutapp.UpdateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	line, err := h.checkoutService.UpdateLine(c.Request.Context(), sessionID, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, line)
}

// RemoveLine godoc
// @ID           removeCartLine
// @Summary      Remove a line from a session cart
// @Tags         cart
// @Produce      json
// @Param        sessionId path string true "Cart session ID"
// @Param        lineId path string true "Cart line ID"
// @Success      204
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /cart/{sessionId}/items/{lineId} [delete]
func (h *CartHandler) RemoveLine(c *gin.Context) {
	sessionID := c.Param("sessionId")
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	if err := h.checkoutService.RemoveLine(c.Request.Context(), sessionID, lineID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetCart godoc
// @ID           getCart
// @Summary      Get a session cart
// @Description  Returns all cart lines for the session with effective prices and subtotal
// @Tags         cart
// @Produce      json
// @Param        sessionId path string true "Cart session ID"
// @Success      200 {object} dto.Response
// @Router       /cart/{sessionId} [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		h.BadRequest(c, "Session ID is required")
		return
	}

	cart, err := h.checkoutService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cart)
}

// ClearCart godoc
// @ID           clearCart
// @Summary      Remove every line from a session cart
// @Tags         cart
// @Produce      json
// @Param        sessionId path string true "Cart session ID"
// @Success      204
// @Router       /cart/{sessionId} [delete]
func (h *CartHandler) ClearCart(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		h.BadRequest(c, "Session ID is required")
		return
	}

	if err := h.checkoutService.ClearCart(c.Request.Context(), sessionID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cart := rg.Group("/cart")
	{
		cart.GET("/:sessionId", h.GetCart)
		cart.DELETE("/:sessionId", h.ClearCart)
		cart.POST("/:sessionId/items", h.AddLine)
		cart.PATCH("/:sessionId/items/:lineId", h.UpdateLine)
		cart.DELETE("/:sessionId/items/:lineId", h.RemoveLine)
	}
}
