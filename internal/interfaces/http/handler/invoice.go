package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	invoicingapp "github.com/shadeworks/backend/internal/application/invoicing"
	"github.com/shadeworks/backend/internal/interfaces/http/middleware"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoicingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoicingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// Create godoc
// @ID           createInvoice
// @Summary      Generate an invoice from an order
// @Description  Builds a customer or manufacturer invoice from the order's frozen pricing. One active invoice per order and type; duplicates are rejected with 409.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body invoicingapp.CreateInvoiceRequest true "Invoice source"
// @Success      201 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req invoicingapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	invoice, err := h.invoiceService.CreateFromOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        order_id query string false "Order ID filter"
// @Param        type query string false "Invoice type filter"
// @Param        status query string false "Invoice status filter"
// @Success      200 {object} dto.Response
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter invoicingapp.InvoiceListFilter
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

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.Get(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Update an invoice's editable fields
// @Description  Mutates notes, due date, or status (issue/cancel). Monetary fields and the order linkage are immutable.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body invoicingapp.UpdateInvoiceRequest true "Fields to update"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /invoices/{id} [patch]
func (h *InvoiceHandler) Update(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req invoicingapp.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// RecordPayment godoc
// @ID           recordInvoicePayment
// @Summary      Apply a payment to an invoice
// @Description  Records a payment against the amount due. Overpayment and payments on paid or cancelled invoices are rejected with 422.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Param        request body invoicingapp.PaymentInput true "Payment details"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var input invoicingapp.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), invoiceID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Summary godoc
// @ID           getInvoiceSummary
// @Summary      Summarize invoices by status
// @Description  Returns counts and totals per invoice status, including overdue figures
// @Tags         invoices
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /invoices/summary [get]
func (h *InvoiceHandler) Summary(c *gin.Context) {
	summary, err := h.invoiceService.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// Backfill godoc
// @ID           backfillInvoices
// @Summary      Generate missing customer invoices
// @Description  Scans paid-or-later orders without an active customer invoice and creates one per order, reporting per-order failures without aborting the batch
// @Tags         invoices
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /invoices/backfill [post]
func (h *InvoiceHandler) Backfill(c *gin.Context) {
	result, err := h.invoiceService.GenerateMissing(c.Request.Context(), getActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RenderDocument godoc
// @ID           renderInvoiceDocument
// @Summary      Render and archive an invoice PDF
// @Description  Renders the invoice to PDF, archives it in document storage, and returns the storage URL with a signed share link
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /invoices/{id}/document [post]
func (h *InvoiceHandler) RenderDocument(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	document, err := h.invoiceService.RenderDocument(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, document)
}

// GetShared godoc
// @ID           getSharedInvoice
// @Summary      Resolve a share-link token to its invoice
// @Description  Verifies the signed token and returns the invoice it grants access to. Expired or tampered tokens yield 401.
// @Tags         invoices
// @Produce      json
// @Param        token path string true "Signed share token"
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /invoices/shared/{token} [get]
func (h *InvoiceHandler) GetShared(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		h.BadRequest(c, "Share token is required")
		return
	}

	invoice, err := h.invoiceService.ResolveShareToken(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// RegisterRoutes registers all invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/summary", h.Summary)
		invoices.POST("/backfill", h.Backfill)
		invoices.GET("/shared/:token", h.GetShared)
		invoices.GET("/:id", h.Get)
		invoices.PATCH("/:id", h.Update)
		invoices.POST("/:id/payments", h.RecordPayment)
		invoices.POST("/:id/document", h.RenderDocument)
	}
}
