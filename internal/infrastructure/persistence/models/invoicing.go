package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/backend/internal/domain/invoicing"
)

// InvoiceModel is the persistence model for invoices. Line items and payment
// records live in JSONB columns because they are read and written as a whole
// with the invoice, never queried independently.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	Type          string                   `gorm:"type:varchar(20);not null;index:idx_invoices_order_type,priority:2"`
	Status        string                   `gorm:"type:varchar(20);not null;index"`
	OrderID       uuid.UUID                `gorm:"type:uuid;not null;index:idx_invoices_order_type,priority:1"`
	OrderNumber   string                   `gorm:"type:varchar(50)"`
	Customer      invoicing.BillTo         `gorm:"type:jsonb;not null"`
	Items         invoicing.InvoiceItems   `gorm:"type:jsonb;not null"`
	Subtotal      decimal.Decimal          `gorm:"type:decimal(12,2);not null"`
	Tax           decimal.Decimal          `gorm:"type:decimal(12,2);not null"`
	TaxRate       decimal.Decimal          `gorm:"type:decimal(8,5);not null"`
	Shipping      decimal.Decimal          `gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal          `gorm:"type:decimal(12,2);not null"`
	Total         decimal.Decimal          `gorm:"type:decimal(12,2);not null"`
	AmountPaid    decimal.Decimal          `gorm:"type:decimal(12,2);not null"`
	AmountDue     decimal.Decimal          `gorm:"type:decimal(12,2);not null"`
	Payments      invoicing.PaymentRecords `gorm:"type:jsonb;not null"`
	IssueDate     time.Time                `gorm:"not null"`
	DueDate       *time.Time
	Notes         string `gorm:"type:text"`
	DocumentURL   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		InvoiceNumber: m.InvoiceNumber,
		Type:          invoicing.InvoiceType(m.Type),
		Status:        invoicing.InvoiceStatus(m.Status),
		OrderID:       m.OrderID,
		OrderNumber:   m.OrderNumber,
		Customer:      m.Customer,
		Items:         m.Items,
		Subtotal:      m.Subtotal,
		Tax:           m.Tax,
		TaxRate:       m.TaxRate,
		Shipping:      m.Shipping,
		Discount:      m.Discount,
		Total:         m.Total,
		AmountPaid:    m.AmountPaid,
		AmountDue:     m.AmountDue,
		Payments:      m.Payments,
		IssueDate:     m.IssueDate,
		DueDate:       m.DueDate,
		Notes:         m.Notes,
		DocumentURL:   m.DocumentURL,
	}
	m.PopulateAggregateRoot(&inv.BaseAggregateRoot)
	return inv
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.Type = string(inv.Type)
	m.Status = string(inv.Status)
	m.OrderID = inv.OrderID
	m.OrderNumber = inv.OrderNumber
	m.Customer = inv.Customer
	m.Items = inv.Items
	m.Subtotal = inv.Subtotal
	m.Tax = inv.Tax
	m.TaxRate = inv.TaxRate
	m.Shipping = inv.Shipping
	m.Discount = inv.Discount
	m.Total = inv.Total
	m.AmountPaid = inv.AmountPaid
	m.AmountDue = inv.AmountDue
	m.Payments = inv.Payments
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Notes = inv.Notes
	m.DocumentURL = inv.DocumentURL
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
