package invoicing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadeworks/backend/internal/domain/shared"
	"github.com/shadeworks/backend/internal/domain/shared/valueobject"
)

// Test helpers

func testBillTo(t *testing.T) BillTo {
	addr, err := valueobject.NewAddress("1400 Shade Ave", "Austin", "TX", "78701")
	require.NoError(t, err)
	return BillTo{
		Name:    "Maria Santos",
		Email:   "maria@example.com",
		Address: addr,
	}
}

func testItems() []InvoiceItem {
	return []InvoiceItem{
		{
			ID:          uuid.New(),
			ProductID:   "roller-blackout",
			ProductName: "Blackout Roller Shade",
			Quantity:    2,
			WidthIn:     decimal.NewFromInt(36),
			HeightIn:    decimal.NewFromInt(48),
			UnitPrice:   decimal.NewFromFloat(89.79),
			LineTotal:   decimal.NewFromFloat(179.58),
			Options: []LineOption{
				{Type: "motor", Name: "RF Motor", Price: decimal.NewFromFloat(30.00)},
			},
		},
	}
}

func testTotals() Totals {
	return Totals{
		Subtotal: decimal.NewFromFloat(179.58),
		Tax:      decimal.NewFromFloat(13.02),
		TaxRate:  decimal.NewFromFloat(0.0725),
		Shipping: decimal.Zero,
		Discount: decimal.Zero,
		Total:    decimal.NewFromFloat(192.60),
	}
}

func testInvoice(t *testing.T, invoiceType InvoiceType) *Invoice {
	number := "INV-2026-00001"
	if invoiceType == InvoiceTypeManufacturer {
		number = "MINV-2026-00001"
	}
	invoice, err := NewInvoice(number, invoiceType, uuid.New(), "ORD-2026-00001",
		testBillTo(t), testItems(), testTotals(), nil)
	require.NoError(t, err)
	return invoice
}

// ============================================
// InvoiceType / InvoiceStatus Tests
// ============================================

func TestInvoiceType_IsValid(t *testing.T) {
	assert.True(t, InvoiceTypeCustomer.IsValid())
	assert.True(t, InvoiceTypeManufacturer.IsValid())
	assert.False(t, InvoiceType("supplier").IsValid())
	assert.False(t, InvoiceType("").IsValid())
}

func TestInvoiceStatus_IsOpen(t *testing.T) {
	assert.True(t, InvoiceStatusDraft.IsOpen())
	assert.True(t, InvoiceStatusIssued.IsOpen())
	assert.True(t, InvoiceStatusPartiallyPaid.IsOpen())
	assert.True(t, InvoiceStatusPaid.IsOpen())
	assert.False(t, InvoiceStatusCancelled.IsOpen())
}

// ============================================
// Invoice Tests
// ============================================

func TestNewInvoice(t *testing.T) {
	t.Run("customer invoice starts issued", func(t *testing.T) {
		invoice := testInvoice(t, InvoiceTypeCustomer)

		assert.Equal(t, InvoiceStatusIssued, invoice.Status)
		assert.Equal(t, "192.60", invoice.Total.StringFixed(2))
		assert.Equal(t, "0.00", invoice.AmountPaid.StringFixed(2))
		assert.Equal(t, "192.60", invoice.AmountDue.StringFixed(2))
		assert.False(t, invoice.IssueDate.IsZero())

		events := invoice.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoiceCreated, events[0].EventType())
	})

	t.Run("manufacturer invoice starts draft", func(t *testing.T) {
		invoice := testInvoice(t, InvoiceTypeManufacturer)
		assert.Equal(t, InvoiceStatusDraft, invoice.Status)
	})

	t.Run("requires invoice number", func(t *testing.T) {
		_, err := NewInvoice("", InvoiceTypeCustomer, uuid.New(), "ORD-1", testBillTo(t), testItems(), testTotals(), nil)
		assertDomainErrorCode(t, err, "INVALID_INVOICE_NUMBER")
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewInvoice("INV-1", InvoiceType("wholesale"), uuid.New(), "ORD-1", testBillTo(t), testItems(), testTotals(), nil)
		assertDomainErrorCode(t, err, "INVALID_INVOICE_TYPE")
	})

	t.Run("requires order", func(t *testing.T) {
		_, err := NewInvoice("INV-1", InvoiceTypeCustomer, uuid.Nil, "ORD-1", testBillTo(t), testItems(), testTotals(), nil)
		assertDomainErrorCode(t, err, "INVALID_ORDER")
	})

	t.Run("requires items", func(t *testing.T) {
		_, err := NewInvoice("INV-1", InvoiceTypeCustomer, uuid.New(), "ORD-1", testBillTo(t), nil, testTotals(), nil)
		assertDomainErrorCode(t, err, "NO_ITEMS")
	})
}

func TestInvoice_MarkSettledByOrder(t *testing.T) {
	invoice := testInvoice(t, InvoiceTypeCustomer)

	invoice.MarkSettledByOrder("fake", "FAKE-1756000000")

	assert.Equal(t, InvoiceStatusPaid, invoice.Status)
	assert.Equal(t, "192.60", invoice.AmountPaid.StringFixed(2))
	assert.Equal(t, "0.00", invoice.AmountDue.StringFixed(2))
	require.Len(t, invoice.Payments, 1)
	assert.Equal(t, "FAKE-1756000000", invoice.Payments[0].Reference)
}

func TestInvoice_RecordPayment(t *testing.T) {
	t.Run("partial payment", func(t *testing.T) {
		invoice := testInvoice(t, InvoiceTypeCustomer)
		invoice.ClearDomainEvents()

		err := invoice.RecordPayment(decimal.NewFromFloat(100.00), "card", "ch_123", "")
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusPartiallyPaid, invoice.Status)
		assert.Equal(t, "100.00", invoice.AmountPaid.StringFixed(2))
		assert.Equal(t, "92.60", invoice.AmountDue.StringFixed(2))
		require.Len(t, invoice.Payments, 1)

		events := invoice.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoicePaymentRecorded, events[0].EventType())
	})

	t.Run("final payment settles", func(t *testing.T) {
		invoice := testInvoice(t, InvoiceTypeCustomer)
		require.NoError(t, invoice.RecordPayment(decimal.NewFromFloat(100.00), "card", "ch_123", ""))
		invoice.ClearDomainEvents()

		err := invoice.RecordPayment(decimal.NewFromFloat(92.60), "card", "ch_124", "")
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusPaid, invoice.Status)
		assert.True(t, invoice.IsPaid())
		assert.Equal(t, "0.00", invoice.AmountDue.StringFixed(2))
		assert.Len(t, invoice.Payments, 2)

		events := invoice.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoicePaid, events[0].EventType())
	})

	t.Run("rejects overpayment", func(t *testing.T) {
		invoice := testInvoice(t, InvoiceTypeCustomer)
		err := invoice.RecordPayment(decimal.NewFromFloat(500.00), "card", "ch_125", "")
		assertDomainErrorCode(t, err, "EXCEEDS_AMOUNT_DUE")
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		invoice := testInvoice(t, InvoiceTypeCustomer)
		err := invoice.RecordPayment(decimal.Zero, "card", "", "")
		assertDomainErrorCode(t, err, "INVALID_AMOUNT")
	})

	t.Run("rejects payment on cancelled invoice", func(t *testing.T) {
		invoice := testInvoice(t, InvoiceTypeCustomer)
		require.NoError(t, invoice.Cancel("duplicate"))

		err := invoice.RecordPayment(decimal.NewFromFloat(10.00), "card", "", "")
		assertDomainErrorCode(t, err, "INVALID_STATE")
	})

	t.Run("rejects payment on paid invoice", func(t *testing.T) {
		invoice := testInvoice(t, InvoiceTypeCustomer)
		invoice.MarkSettledByOrder("card", "ch_126")

		err := invoice.RecordPayment(decimal.NewFromFloat(10.00), "card", "", "")
		assertDomainErrorCode(t, err, "ALREADY_PAID")
	})
}

func TestInvoice_Issue(t *testing.T) {
	invoice := testInvoice(t, InvoiceTypeManufacturer)
	require.Equal(t, InvoiceStatusDraft, invoice.Status)

	require.NoError(t, invoice.Issue())
	assert.Equal(t, InvoiceStatusIssued, invoice.Status)

	err := invoice.Issue()
	assertDomainErrorCode(t, err, "INVALID_STATE")
}

func TestInvoice_Cancel(t *testing.T) {
	t.Run("cancels open invoice", func(t *testing.T) {
		invoice := testInvoice(t, InvoiceTypeCustomer)

		require.NoError(t, invoice.Cancel("regenerating with corrected address"))
		assert.Equal(t, InvoiceStatusCancelled, invoice.Status)
		assert.False(t, invoice.IsOpen())
	})

	t.Run("rejects double cancel", func(t *testing.T) {
		invoice := testInvoice(t, InvoiceTypeCustomer)
		require.NoError(t, invoice.Cancel("first"))
		assert.Error(t, invoice.Cancel("second"))
	})

	t.Run("rejects cancelling a paid invoice", func(t *testing.T) {
		invoice := testInvoice(t, InvoiceTypeCustomer)
		invoice.MarkSettledByOrder("card", "ch_127")
		assert.Error(t, invoice.Cancel("too late"))
	})
}

func TestInvoice_IsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	invoice := testInvoice(t, InvoiceTypeCustomer)
	assert.False(t, invoice.IsOverdue(now), "no due date")

	invoice.SetDueDate(&future)
	assert.False(t, invoice.IsOverdue(now))

	invoice.SetDueDate(&past)
	assert.True(t, invoice.IsOverdue(now))

	invoice.MarkSettledByOrder("card", "ch_128")
	assert.False(t, invoice.IsOverdue(now), "paid invoices are never overdue")
}

// ============================================
// JSONB Tests
// ============================================

func TestInvoiceItems_ScanValue(t *testing.T) {
	original := InvoiceItems(testItems())

	value, err := original.Value()
	require.NoError(t, err)

	var restored InvoiceItems
	require.NoError(t, restored.Scan(value))
	require.Len(t, restored, 1)
	assert.Equal(t, "roller-blackout", restored[0].ProductID)
	assert.Len(t, restored[0].Options, 1)

	var empty InvoiceItems
	require.NoError(t, empty.Scan(nil))
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestPaymentRecords_ScanValue(t *testing.T) {
	records := PaymentRecords{*NewPaymentRecord(decimal.NewFromFloat(50.00), "card", "ch_1", "")}

	value, err := records.Value()
	require.NoError(t, err)

	var restored PaymentRecords
	require.NoError(t, restored.Scan(value))
	require.Len(t, restored, 1)
	assert.Equal(t, "50.00", restored[0].Amount.StringFixed(2))

	var nilRecords PaymentRecords
	nilValue, err := nilRecords.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", nilValue)
}

func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}
