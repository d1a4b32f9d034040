package invoicing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/backend/internal/domain/shared"
	"github.com/shadeworks/backend/internal/domain/shared/valueobject"
)

// InvoiceType distinguishes the customer-facing bill from the supplier bill
type InvoiceType string

const (
	// InvoiceTypeCustomer bills the buyer at retail prices
	InvoiceTypeCustomer InvoiceType = "customer"

	// InvoiceTypeManufacturer bills the platform at wholesale cost
	InvoiceTypeManufacturer InvoiceType = "manufacturer"
)

// IsValid checks if the invoice type is valid
func (t InvoiceType) IsValid() bool {
	return t == InvoiceTypeCustomer || t == InvoiceTypeManufacturer
}

// String returns the string representation
func (t InvoiceType) String() string {
	return string(t)
}

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusIssued        InvoiceStatus = "issued"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

// IsValid checks if the invoice status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusIssued, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsOpen reports whether the invoice still counts against the one-per-order
// duplicate rule. Only cancelled invoices are excluded.
func (s InvoiceStatus) IsOpen() bool {
	return s != InvoiceStatusCancelled
}

// BillTo captures who the invoice is addressed to
type BillTo struct {
	Name    string              `json:"name"`
	Email   string              `json:"email,omitempty"`
	Phone   string              `json:"phone,omitempty"`
	Address valueobject.Address `json:"address"`
}

// Value implements driver.Valuer for JSONB storage
func (b BillTo) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements sql.Scanner for database retrieval
func (b *BillTo) Scan(value any) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into BillTo", value)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, b)
}

// LineOption is a per-unit add-on exploded onto a customer invoice line
type LineOption struct {
	Type  string          `json:"type"`
	Name  string          `json:"name,omitempty"`
	Price decimal.Decimal `json:"price"`
}

// LineAccessory is a per-line accessory exploded onto a customer invoice line
type LineAccessory struct {
	Name     string          `json:"name"`
	Code     string          `json:"code,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity,omitempty"`
}

// InvoiceItem is one billed line. For customer invoices the unit price is
// the retail price with the full option and accessory breakdown; for
// manufacturer invoices it is the per-unit wholesale cost.
type InvoiceItem struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	RoomLabel   string          `json:"roomLabel,omitempty"`
	Quantity    int             `json:"quantity"`
	WidthIn     decimal.Decimal `json:"widthIn"`
	HeightIn    decimal.Decimal `json:"heightIn"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	Options     []LineOption    `json:"options,omitempty"`
	Accessories []LineAccessory `json:"accessories,omitempty"`
}

// InvoiceItems is a slice of InvoiceItem stored as JSONB
type InvoiceItems []InvoiceItem

// Value implements driver.Valuer for JSONB storage
func (i InvoiceItems) Value() (driver.Value, error) {
	if i == nil {
		return "[]", nil
	}
	return json.Marshal(i)
}

// Scan implements sql.Scanner for database retrieval
func (i *InvoiceItems) Scan(value any) error {
	if value == nil {
		*i = InvoiceItems{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to scan InvoiceItems: unsupported type")
	}
	if len(data) == 0 {
		*i = InvoiceItems{}
		return nil
	}
	return json.Unmarshal(data, i)
}

// PaymentRecord is one payment applied to an invoice
type PaymentRecord struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
	PaidAt    time.Time       `json:"paidAt"`
	Notes     string          `json:"notes,omitempty"`
}

// NewPaymentRecord creates a payment record
func NewPaymentRecord(amount decimal.Decimal, method, reference, notes string) *PaymentRecord {
	return &PaymentRecord{
		ID:        uuid.New(),
		Amount:    amount.Round(2),
		Method:    method,
		Reference: reference,
		PaidAt:    time.Now(),
		Notes:     notes,
	}
}

// PaymentRecords is a slice of PaymentRecord stored as JSONB
type PaymentRecords []PaymentRecord

// Value implements driver.Valuer for JSONB storage
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for database retrieval
func (p *PaymentRecords) Scan(value any) error {
	if value == nil {
		*p = PaymentRecords{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to scan PaymentRecords: unsupported type")
	}
	if len(data) == 0 {
		*p = PaymentRecords{}
		return nil
	}
	return json.Unmarshal(data, p)
}

// Totals is the money summary copied onto an invoice. For customer invoices
// every field is copied verbatim from the order's stored pricing; nothing is
// ever recomputed from the shipping address.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	TaxRate  decimal.Decimal `json:"taxRate"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Invoice is a read-mostly projection of an order. Its total always equals
// the source order's stored total; reconciliation depends on that.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string
	Type          InvoiceType
	Status        InvoiceStatus
	OrderID       uuid.UUID
	OrderNumber   string
	Customer      BillTo
	Items         InvoiceItems
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	TaxRate       decimal.Decimal
	Shipping      decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	AmountDue     decimal.Decimal
	Payments      PaymentRecords
	IssueDate     time.Time
	DueDate       *time.Time
	Notes         string
	DocumentURL   string
}

// NewInvoice creates an invoice for an order. Customer invoices start
// issued; manufacturer invoices start draft. The caller marks the invoice
// paid via MarkSettledByOrder when the source order's payment already
// completed.
func NewInvoice(invoiceNumber string, invoiceType InvoiceType, orderID uuid.UUID, orderNumber string, customer BillTo, items []InvoiceItem, totals Totals, dueDate *time.Time) (*Invoice, error) {
	if strings.TrimSpace(invoiceNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVOICE_TYPE", fmt.Sprintf("Unknown invoice type %q", invoiceType))
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Invoice must contain at least one item")
	}
	if totals.Total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TOTAL", "Invoice total cannot be negative")
	}

	status := InvoiceStatusIssued
	if invoiceType == InvoiceTypeManufacturer {
		status = InvoiceStatusDraft
	}

	invoice := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		Type:              invoiceType,
		Status:            status,
		OrderID:           orderID,
		OrderNumber:       orderNumber,
		Customer:          customer,
		Items:             items,
		Subtotal:          totals.Subtotal,
		Tax:               totals.Tax,
		TaxRate:           totals.TaxRate,
		Shipping:          totals.Shipping,
		Discount:          totals.Discount,
		Total:             totals.Total,
		AmountPaid:        decimal.Zero,
		AmountDue:         totals.Total,
		Payments:          PaymentRecords{},
		IssueDate:         time.Now(),
		DueDate:           dueDate,
	}

	invoice.AddDomainEvent(NewInvoiceCreatedEvent(invoice))

	return invoice, nil
}

// MarkSettledByOrder records that the source order's payment had already
// completed when the invoice was generated. The whole total is treated as
// paid without a live payment lookup.
func (inv *Invoice) MarkSettledByOrder(method, reference string) {
	record := NewPaymentRecord(inv.Total, method, reference, "Settled at order time")
	inv.Payments = append(inv.Payments, *record)
	inv.AmountPaid = inv.Total
	inv.AmountDue = decimal.Zero
	inv.Status = InvoiceStatusPaid
	inv.UpdatedAt = time.Now()
}

// RecordPayment applies a payment, decrements the amount due, and flips the
// status to paid (nothing left due) or partially_paid
func (inv *Invoice) RecordPayment(amount decimal.Decimal, method, reference, notes string) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot record payment on a cancelled invoice")
	}
	if inv.Status == InvoiceStatusPaid {
		return shared.NewDomainError("ALREADY_PAID", "Invoice is already fully paid")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(inv.AmountDue) {
		return shared.NewDomainError("EXCEEDS_AMOUNT_DUE", fmt.Sprintf("Payment amount %s exceeds amount due %s", amount.StringFixed(2), inv.AmountDue.StringFixed(2)))
	}

	record := NewPaymentRecord(amount, method, reference, notes)
	inv.Payments = append(inv.Payments, *record)

	inv.AmountPaid = inv.AmountPaid.Add(record.Amount)
	inv.AmountDue = inv.Total.Sub(inv.AmountPaid)

	if inv.AmountDue.LessThanOrEqual(decimal.Zero) {
		inv.Status = InvoiceStatusPaid
		inv.AddDomainEvent(NewInvoicePaidEvent(inv, record))
	} else {
		inv.Status = InvoiceStatusPartiallyPaid
		inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, record))
	}

	inv.UpdatedAt = time.Now()

	return nil
}

// Issue moves a draft invoice to issued
func (inv *Invoice) Issue() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot issue invoice in %s status", inv.Status))
	}
	inv.Status = InvoiceStatusIssued
	inv.UpdatedAt = time.Now()
	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))
	return nil
}

// Cancel voids the invoice. A cancelled invoice no longer blocks generating
// a replacement for the same order.
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already cancelled")
	}
	if inv.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a fully paid invoice")
	}

	inv.Status = InvoiceStatusCancelled
	inv.UpdatedAt = time.Now()
	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv, reason))

	return nil
}

// SetNotes updates the free-form notes
func (inv *Invoice) SetNotes(notes string) {
	inv.Notes = notes
	inv.UpdatedAt = time.Now()
}

// SetDueDate updates the due date
func (inv *Invoice) SetDueDate(dueDate *time.Time) {
	inv.DueDate = dueDate
	inv.UpdatedAt = time.Now()
}

// SetDocumentURL records where the rendered invoice document was archived
func (inv *Invoice) SetDocumentURL(url string) {
	inv.DocumentURL = url
	inv.UpdatedAt = time.Now()
}

// IsOpen reports whether the invoice counts against the duplicate guard
func (inv *Invoice) IsOpen() bool {
	return inv.Status.IsOpen()
}

// IsPaid reports whether the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsOverdue reports whether an unpaid invoice passed its due date
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.DueDate == nil || inv.IsPaid() || inv.Status == InvoiceStatusCancelled {
		return false
	}
	return now.After(*inv.DueDate)
}

// TotalMoney returns the invoice total as a Money value object
func (inv *Invoice) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(inv.Total)
}
