package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/backend/internal/domain/shared"
)

// EntryType classifies an append-only accounting fact
type EntryType string

const (
	// EntryTypeCustomerPaymentReceived credits the customer's full payment
	EntryTypeCustomerPaymentReceived EntryType = "customer_payment_received"

	// EntryTypeSalesTaxCollected credits tax held for remittance
	EntryTypeSalesTaxCollected EntryType = "sales_tax_collected"

	// EntryTypeShippingCharged credits shipping collected from the customer
	EntryTypeShippingCharged EntryType = "shipping_charged"

	// EntryTypeManufacturerPayable debits the liability owed to the supplier
	// at order time
	EntryTypeManufacturerPayable EntryType = "manufacturer_payable"

	// EntryTypeManufacturerPaid debits the supplier payment realized at ship
	// time
	EntryTypeManufacturerPaid EntryType = "manufacturer_paid"

	// EntryTypeMarginEarned credits the realized profit at ship time
	EntryTypeMarginEarned EntryType = "margin_earned"
)

// AllEntryTypes lists every valid ledger entry type
var AllEntryTypes = []EntryType{
	EntryTypeCustomerPaymentReceived,
	EntryTypeSalesTaxCollected,
	EntryTypeShippingCharged,
	EntryTypeManufacturerPayable,
	EntryTypeManufacturerPaid,
	EntryTypeMarginEarned,
}

// IsValid checks if the entry type is valid
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeCustomerPaymentReceived, EntryTypeSalesTaxCollected, EntryTypeShippingCharged,
		EntryTypeManufacturerPayable, EntryTypeManufacturerPaid, EntryTypeMarginEarned:
		return true
	}
	return false
}

// String returns the string representation
func (t EntryType) String() string {
	return string(t)
}

// Sign returns +1 for credit types and -1 for debit types
func (t EntryType) Sign() int {
	switch t {
	case EntryTypeManufacturerPayable, EntryTypeManufacturerPaid:
		return -1
	default:
		return 1
	}
}

// IsCredit reports whether the type carries positive amounts
func (t EntryType) IsCredit() bool {
	return t.Sign() > 0
}

// Apply signs a magnitude according to the entry type
func (t EntryType) Apply(magnitude decimal.Decimal) decimal.Decimal {
	if t.Sign() < 0 {
		return magnitude.Abs().Neg()
	}
	return magnitude.Abs()
}

// Metadata keys used on ledger entries
const (
	MetaKeyMargin           = "margin"
	MetaKeyMarginPercent    = "marginPercent"
	MetaKeyManufacturerCost = "manufacturerCost"
	MetaKeyProfit           = "profit"
	MetaKeyTransactionID    = "transactionId"
)

// Metadata is a free-form JSONB attachment on a ledger entry
type Metadata map[string]any

// Value implements driver.Valuer for JSONB storage
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for database retrieval
func (m *Metadata) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into Metadata", value)
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(data, m)
}

// LedgerEntry is an append-only accounting fact tied to an order. Entries
// are never edited or deleted; corrections are new entries.
type LedgerEntry struct {
	ID          uuid.UUID
	Type        EntryType
	OrderID     uuid.UUID
	OrderNumber string
	Amount      decimal.Decimal
	Description string
	Metadata    Metadata
	PostingKey  string
	CreatedAt   time.Time
}

// NewEntry creates a ledger entry with the amount signed per its type. The
// magnitude's absolute value is used; margin entries keep their own sign
// because a losing order earns negative margin.
func NewEntry(entryType EntryType, orderID uuid.UUID, orderNumber string, magnitude decimal.Decimal, description string, metadata Metadata) (*LedgerEntry, error) {
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTRY_TYPE", fmt.Sprintf("Unknown ledger entry type %q", entryType))
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}

	amount := entryType.Apply(magnitude.Round(2))
	if entryType == EntryTypeMarginEarned && magnitude.IsNegative() {
		amount = magnitude.Round(2)
	}

	return &LedgerEntry{
		ID:          uuid.New(),
		Type:        entryType,
		OrderID:     orderID,
		OrderNumber: orderNumber,
		Amount:      amount,
		Description: description,
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}, nil
}

// Magnitude returns the unsigned amount
func (e *LedgerEntry) Magnitude() decimal.Decimal {
	return e.Amount.Abs()
}

// IsDebit reports whether the entry reduces the platform's cash position
func (e *LedgerEntry) IsDebit() bool {
	return e.Amount.IsNegative()
}

// OrderPostingKey is the idempotency key for the order-time posting batch
func OrderPostingKey(orderID uuid.UUID) string {
	return "order_posting:" + orderID.String()
}

// ShipProfitPostingKey is the idempotency key for the ship-time profit batch
func ShipProfitPostingKey(orderID uuid.UUID) string {
	return "ship_profit:" + orderID.String()
}
