package ordering

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shadeworks/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is an ephemeral line owned by a shopping session. Lines are
// destroyed on checkout (promoted into an Order) or explicit removal.
//
// Price fields: UnitPrice is the per-unit price the customer saw.
// CalculatedPrice, when present, is a fresher per-unit price from the pricing
// engine. LineTotal, when present, is already quantity-multiplied. The
// effective line total resolves LineTotal first, then falls back to the
// effective unit price times quantity.
type CartLine struct {
	ID              uuid.UUID
	SessionID       string
	ProductID       string
	ProductName     string
	Quantity        int
	WidthIn         decimal.Decimal
	HeightIn        decimal.Decimal
	RoomLabel       string
	Configuration   json.RawMessage
	UnitPrice       decimal.Decimal
	CalculatedPrice *decimal.Decimal
	LineTotal       *decimal.Decimal
	PriceSnapshot   *PriceSnapshot
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewCartLine creates a cart line for a session
func NewCartLine(sessionID, productID, productName string, quantity int, widthIn, heightIn, unitPrice decimal.Decimal) (*CartLine, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, shared.NewDomainError("INVALID_SESSION", "Session ID cannot be empty")
	}
	if strings.TrimSpace(productID) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if widthIn.IsNegative() || heightIn.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DIMENSIONS", "Width and height cannot be negative")
	}

	now := time.Now()
	return &CartLine{
		ID:          uuid.New(),
		SessionID:   sessionID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		WidthIn:     widthIn,
		HeightIn:    heightIn,
		UnitPrice:   unitPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// UpdateQuantity changes the line quantity. A stored LineTotal is cleared
// because it no longer reflects the new quantity.
func (l *CartLine) UpdateQuantity(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	l.Quantity = quantity
	l.LineTotal = nil
	l.UpdatedAt = time.Now()
	return nil
}

// AttachSnapshot freezes a price breakdown onto the line
func (l *CartLine) AttachSnapshot(snapshot PriceSnapshot) {
	l.PriceSnapshot = &snapshot
	l.UpdatedAt = time.Now()
}

// EffectiveUnitPrice resolves the per-unit price: calculated price when the
// pricing engine supplied one, the stored unit price otherwise.
func (l *CartLine) EffectiveUnitPrice() decimal.Decimal {
	if l.CalculatedPrice != nil {
		return *l.CalculatedPrice
	}
	return l.UnitPrice
}

// EffectiveLineTotal resolves the line total. LineTotal is already
// quantity-multiplied; do not multiply it by quantity again.
func (l *CartLine) EffectiveLineTotal() decimal.Decimal {
	if l.LineTotal != nil {
		return *l.LineTotal
	}
	return l.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// HasSnapshot reports whether a frozen price breakdown exists
func (l *CartLine) HasSnapshot() bool {
	return l.PriceSnapshot != nil
}
