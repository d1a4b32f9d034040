package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/backend/internal/domain/invoicing"
)

// ==================== Request DTOs ====================

// CreateInvoiceRequest represents a request to generate an invoice from an order
type CreateInvoiceRequest struct {
	OrderID        uuid.UUID  `json:"order_id" binding:"required"`
	Type           string     `json:"type" binding:"required,oneof=customer manufacturer"`
	DueDate        *time.Time `json:"due_date"`
	Notes          string     `json:"notes" binding:"max=2000"`
	AllowDuplicate bool       `json:"allow_duplicate"`
}

// UpdateInvoiceRequest mutates the editable surface of an invoice. Monetary
// fields and the order linkage are immutable.
type UpdateInvoiceRequest struct {
	Notes   *string    `json:"notes" binding:"omitempty,max=2000"`
	Status  *string    `json:"status" binding:"omitempty,oneof=issued cancelled"`
	DueDate *time.Time `json:"due_date"`
}

// PaymentInput represents a payment applied to an invoice
type PaymentInput struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,max=50"`
	Reference string          `json:"reference" binding:"max=100"`
	Notes     string          `json:"notes" binding:"max=500"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
	OrderID   *uuid.UUID `form:"order_id"`
	Type      *string    `form:"type"`
	Status    *string    `form:"status"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
}

// ==================== Response DTOs ====================

// InvoiceItemResponse represents one billed line in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID                 `json:"id"`
	ProductID   string                    `json:"product_id"`
	ProductName string                    `json:"product_name,omitempty"`
	RoomLabel   string                    `json:"room_label,omitempty"`
	Quantity    int                       `json:"quantity"`
	WidthIn     decimal.Decimal           `json:"width_in"`
	HeightIn    decimal.Decimal           `json:"height_in"`
	UnitPrice   decimal.Decimal           `json:"unit_price"`
	LineTotal   decimal.Decimal           `json:"line_total"`
	Options     []invoicing.LineOption    `json:"options,omitempty"`
	Accessories []invoicing.LineAccessory `json:"accessories,omitempty"`
}

// PaymentRecordResponse represents one payment applied to an invoice
type PaymentRecordResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
	Notes     string          `json:"notes,omitempty"`
}

// BillToResponse represents the invoice addressee
type BillToResponse struct {
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID               `json:"id"`
	InvoiceNumber string                  `json:"invoice_number"`
	Type          string                  `json:"type"`
	Status        string                  `json:"status"`
	Overdue       bool                    `json:"overdue"`
	OrderID       uuid.UUID               `json:"order_id"`
	OrderNumber   string                  `json:"order_number"`
	Customer      BillToResponse          `json:"customer"`
	Items         []InvoiceItemResponse   `json:"items"`
	Subtotal      decimal.Decimal         `json:"subtotal"`
	Tax           decimal.Decimal         `json:"tax"`
	TaxRate       decimal.Decimal         `json:"tax_rate"`
	Shipping      decimal.Decimal         `json:"shipping"`
	Discount      decimal.Decimal         `json:"discount"`
	Total         decimal.Decimal         `json:"total"`
	AmountPaid    decimal.Decimal         `json:"amount_paid"`
	AmountDue     decimal.Decimal         `json:"amount_due"`
	Payments      []PaymentRecordResponse `json:"payments"`
	IssueDate     time.Time               `json:"issue_date"`
	DueDate       *time.Time              `json:"due_date,omitempty"`
	Notes         string                  `json:"notes,omitempty"`
	DocumentURL   string                  `json:"document_url,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	Version       int                     `json:"version"`
}

// InvoiceListItemResponse is the compact invoice shape for list views
type InvoiceListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	OrderNumber   string          `json:"order_number"`
	CustomerName  string          `json:"customer_name"`
	Total         decimal.Decimal `json:"total"`
	AmountDue     decimal.Decimal `json:"amount_due"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
}

// BackfillFailure reports one order the backfill could not invoice
type BackfillFailure struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number,omitempty"`
	Error       string    `json:"error"`
}

// BackfillResponse is the result of generating missing customer invoices
type BackfillResponse struct {
	Scanned  int               `json:"scanned"`
	Created  []uuid.UUID       `json:"created"`
	Skipped  int               `json:"skipped"`
	Failures []BackfillFailure `json:"failures,omitempty"`
}

// DocumentResponse is the result of rendering and archiving an invoice PDF
type DocumentResponse struct {
	InvoiceID   uuid.UUID `json:"invoice_id"`
	DocumentURL string    `json:"document_url"`
	ShareToken  string    `json:"share_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ==================== Converters ====================

// ToInvoiceResponse converts a domain invoice to a response DTO
func ToInvoiceResponse(invoice *invoicing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(invoice.Items))
	for i, item := range invoice.Items {
		items[i] = InvoiceItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			RoomLabel:   item.RoomLabel,
			Quantity:    item.Quantity,
			WidthIn:     item.WidthIn,
			HeightIn:    item.HeightIn,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
			Options:     item.Options,
			Accessories: item.Accessories,
		}
	}

	payments := make([]PaymentRecordResponse, len(invoice.Payments))
	for i, record := range invoice.Payments {
		payments[i] = PaymentRecordResponse{
			ID:        record.ID,
			Amount:    record.Amount,
			Method:    record.Method,
			Reference: record.Reference,
			PaidAt:    record.PaidAt,
			Notes:     record.Notes,
		}
	}

	return InvoiceResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		Type:          invoice.Type.String(),
		Status:        invoice.Status.String(),
		Overdue:       invoice.IsOverdue(time.Now()),
		OrderID:       invoice.OrderID,
		OrderNumber:   invoice.OrderNumber,
		Customer: BillToResponse{
			Name:       invoice.Customer.Name,
			Email:      invoice.Customer.Email,
			Phone:      invoice.Customer.Phone,
			Street1:    invoice.Customer.Address.Street1(),
			Street2:    invoice.Customer.Address.Street2(),
			City:       invoice.Customer.Address.City(),
			State:      invoice.Customer.Address.State(),
			PostalCode: invoice.Customer.Address.PostalCode(),
		},
		Items:       items,
		Subtotal:    invoice.Subtotal,
		Tax:         invoice.Tax,
		TaxRate:     invoice.TaxRate,
		Shipping:    invoice.Shipping,
		Discount:    invoice.Discount,
		Total:       invoice.Total,
		AmountPaid:  invoice.AmountPaid,
		AmountDue:   invoice.AmountDue,
		Payments:    payments,
		IssueDate:   invoice.IssueDate,
		DueDate:     invoice.DueDate,
		Notes:       invoice.Notes,
		DocumentURL: invoice.DocumentURL,
		CreatedAt:   invoice.CreatedAt,
		UpdatedAt:   invoice.UpdatedAt,
		Version:     invoice.Version,
	}
}

// ToInvoiceListItemResponses converts domain invoices to compact list DTOs
func ToInvoiceListItemResponses(invoices []invoicing.Invoice) []InvoiceListItemResponse {
	responses := make([]InvoiceListItemResponse, len(invoices))
	for i := range invoices {
		invoice := &invoices[i]
		responses[i] = InvoiceListItemResponse{
			ID:            invoice.ID,
			InvoiceNumber: invoice.InvoiceNumber,
			Type:          invoice.Type.String(),
			Status:        invoice.Status.String(),
			OrderNumber:   invoice.OrderNumber,
			CustomerName:  invoice.Customer.Name,
			Total:         invoice.Total,
			AmountDue:     invoice.AmountDue,
			IssueDate:     invoice.IssueDate,
			DueDate:       invoice.DueDate,
		}
	}
	return responses
}
