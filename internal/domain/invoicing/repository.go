package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/backend/internal/domain/shared"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	OrderID  *uuid.UUID
	Type     *InvoiceType
	Status   *InvoiceStatus
	FromDate *time.Time
	ToDate   *time.Time
}

// StatusSummary aggregates invoices in one status
type StatusSummary struct {
	Status InvoiceStatus   `json:"status"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// TypeSummary aggregates invoices of one type
type TypeSummary struct {
	Type       InvoiceType     `json:"type"`
	Count      int64           `json:"count"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
	AmountDue  decimal.Decimal `json:"amountDue"`
}

// Summary is the aggregate report over all invoices
type Summary struct {
	TotalCount int64           `json:"totalCount"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
	AmountDue  decimal.Decimal `json:"amountDue"`
	ByStatus   []StatusSummary `json:"byStatus"`
	ByType     []TypeSummary   `json:"byType"`
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByInvoiceNumber finds an invoice by its number
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// FindByOrderID returns all invoices for an order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]Invoice, error)

	// FindOpenByOrderAndType finds the non-cancelled invoice of the given
	// type for an order, or shared.ErrNotFound when none exists
	FindOpenByOrderAndType(ctx context.Context, orderID uuid.UUID, invoiceType InvoiceType) (*Invoice, error)

	// FindAll finds invoices with filtering and pagination
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLockAndEvents saves with optimistic locking and persists
	// domain events to the outbox table in the same transaction
	SaveWithLockAndEvents(ctx context.Context, invoice *Invoice, events []shared.DomainEvent) error

	// ExistsOpenByOrderAndType checks the duplicate guard: whether a
	// non-cancelled invoice of this type already exists for the order
	ExistsOpenByOrderAndType(ctx context.Context, orderID uuid.UUID, invoiceType InvoiceType) (bool, error)

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)

	// Summarize aggregates all invoices by status and type
	Summarize(ctx context.Context) (*Summary, error)

	// GenerateInvoiceNumber generates the next unique number for the type
	GenerateInvoiceNumber(ctx context.Context, invoiceType InvoiceType) (string, error)
}
