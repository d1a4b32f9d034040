package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/shadeworks/backend/internal/application/ledger"
)

// LedgerHandler handles financial ledger API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *ledgerapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *ledgerapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// PostOrderEntries godoc
// @ID           postOrderLedgerEntries
// @Summary      Post an order's revenue entries to the ledger
// @Description  Derives sale, tax, and shipping entries from the order's frozen pricing and posts them under an idempotent posting key. Re-posting returns the original batch with already_posted set.
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      201 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /orders/{id}/ledger-entries [post]
func (h *LedgerHandler) PostOrderEntries(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	result, err := h.ledgerService.PostOrderEntries(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.AlreadyPosted {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// EntriesForOrder godoc
// @ID           getOrderLedgerEntries
// @Summary      List an order's ledger entries
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /orders/{id}/ledger-entries [get]
func (h *LedgerHandler) EntriesForOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	entries, err := h.ledgerService.EntriesForOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// RecordShippedProfit godoc
// @ID           recordShippedProfit
// @Summary      Realize an order's profit at ship time
// @Description  Posts profit, manufacturer cost, and sales tax entries for a shipped order. Idempotent per order; the order.shipped event drives the same path.
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      201 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /orders/{id}/ship-profit [post]
func (h *LedgerHandler) RecordShippedProfit(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	result, err := h.ledgerService.RecordShippedProfit(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if result.AlreadyRecorded {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}

// Summary godoc
// @ID           getLedgerSummary
// @Summary      Summarize the ledger by entry type
// @Description  Returns per-type counts and totals plus the net total within an optional date range
// @Tags         ledger
// @Produce      json
// @Param        from query string false "Range start (YYYY-MM-DD)"
// @Param        to query string false "Range end (YYYY-MM-DD)"
// @Success      200 {object} dto.Response
// @Router       /ledger/summary [get]
func (h *LedgerHandler) Summary(c *gin.Context) {
	var filter ledgerapp.SummaryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	summary, err := h.ledgerService.Summary(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// RegisterRoutes registers all ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("/:id/ledger-entries", h.PostOrderEntries)
		orders.GET("/:id/ledger-entries", h.EntriesForOrder)
		orders.POST("/:id/ship-profit", h.RecordShippedProfit)
	}

	rg.GET("/ledger/summary", h.Summary)
}
