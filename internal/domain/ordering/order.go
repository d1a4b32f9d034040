package ordering

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/backend/internal/domain/shared"
	"github.com/shadeworks/backend/internal/domain/shared/valueobject"
)

// PaymentStatus represents the settlement state of an order's payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Customer captures the buyer details frozen onto the order at checkout
type Customer struct {
	Name    string              `json:"name"`
	Email   string              `json:"email"`
	Phone   string              `json:"phone,omitempty"`
	Address valueobject.Address `json:"address"`
}

// Value implements driver.Valuer for JSONB storage
func (c Customer) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner for database retrieval
func (c *Customer) Scan(value any) error {
	return scanJSON(value, c, "Customer")
}

// Payment records how and whether the order was paid
type Payment struct {
	Method        string        `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
}

// Value implements driver.Valuer for JSONB storage
func (p Payment) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for database retrieval
func (p *Payment) Scan(value any) error {
	return scanJSON(value, p, "Payment")
}

// Pricing is the frozen money summary of an order. Total is derived once at
// checkout and never recomputed afterwards; reconciliation jobs may fill in
// the derived manufacturer-cost and margin fields but must not change the
// customer-visible amounts.
type Pricing struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	Tax                   decimal.Decimal `json:"tax"`
	TaxRate               decimal.Decimal `json:"taxRate"`
	Shipping              decimal.Decimal `json:"shipping"`
	Discount              decimal.Decimal `json:"discount"`
	Total                 decimal.Decimal `json:"total"`
	Currency              string          `json:"currency"`
	ManufacturerCostTotal decimal.Decimal `json:"manufacturerCostTotal"`
	MarginTotal           decimal.Decimal `json:"marginTotal"`
	MarginPercent         decimal.Decimal `json:"marginPercent"`
}

// NewPricing builds a pricing block with total = round(subtotal+tax+shipping-discount, 2)
func NewPricing(subtotal, tax, taxRate, shipping, discount decimal.Decimal) Pricing {
	return Pricing{
		Subtotal: subtotal.Round(2),
		Tax:      tax.Round(2),
		TaxRate:  taxRate,
		Shipping: shipping.Round(2),
		Discount: discount.Round(2),
		Total:    subtotal.Add(tax).Add(shipping).Sub(discount).Round(2),
		Currency: string(valueobject.DefaultCurrency),
	}
}

// IsConsistent verifies total == round(subtotal+tax+shipping-discount, 2)
func (p Pricing) IsConsistent() bool {
	expected := p.Subtotal.Add(p.Tax).Add(p.Shipping).Sub(p.Discount).Round(2)
	return p.Total.Equal(expected)
}

// TotalMoney returns the order total as a Money value object
func (p Pricing) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Total)
}

// Value implements driver.Valuer for JSONB storage
func (p Pricing) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for database retrieval
func (p *Pricing) Scan(value any) error {
	return scanJSON(value, p, "Pricing")
}

// OrderItem is a cart line promoted into an order, with its price breakdown
// frozen. Snapshots are never mutated after order creation.
type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     string
	ProductName   string
	Quantity      int
	WidthIn       decimal.Decimal
	HeightIn      decimal.Decimal
	RoomLabel     string
	Configuration json.RawMessage
	UnitPrice     decimal.Decimal
	LineTotal     decimal.Decimal
	Snapshots     PriceSnapshots
	CreatedAt     time.Time
}

// NewOrderItem promotes a cart line into an order item, freezing the given
// snapshot. The unit price and line total come from the line's effective
// price resolution, not from the catalog.
func NewOrderItem(orderID uuid.UUID, line CartLine, snapshot PriceSnapshot) (*OrderItem, error) {
	if strings.TrimSpace(line.ProductID) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if line.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	lineTotal := line.EffectiveLineTotal()
	if lineTotal.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Line total must be positive")
	}

	return &OrderItem{
		ID:            uuid.New(),
		OrderID:       orderID,
		ProductID:     line.ProductID,
		ProductName:   line.ProductName,
		Quantity:      line.Quantity,
		WidthIn:       line.WidthIn,
		HeightIn:      line.HeightIn,
		RoomLabel:     line.RoomLabel,
		Configuration: line.Configuration,
		UnitPrice:     line.EffectiveUnitPrice().Round(2),
		LineTotal:     lineTotal.Round(2),
		Snapshots:     PriceSnapshots{snapshot},
		CreatedAt:     time.Now(),
	}, nil
}

// Snapshot returns the item's frozen price breakdown
func (i *OrderItem) Snapshot() (PriceSnapshot, bool) {
	return i.Snapshots.Primary()
}

// ManufacturerCost returns the wholesale cost of the line:
// (fabric unit cost + per-unit option costs) * quantity + accessory costs.
// Accessories are charged once per line, never multiplied by quantity.
// Lines without a snapshot are estimated at 60% of the customer price.
func (i *OrderItem) ManufacturerCost() decimal.Decimal {
	qty := decimal.NewFromInt(int64(i.Quantity))
	snapshot, ok := i.Snapshots.Primary()
	if !ok {
		return i.UnitPrice.Mul(LegacyCostRatio).Mul(qty).Round(2)
	}
	return snapshot.UnitManufacturerCost().Mul(qty).
		Add(snapshot.AccessoriesManufacturerCost()).
		Round(2)
}

// Order is the durable aggregate for a customer purchase. It is created by
// checkout in order_placed status and mutated only through TransitionTo or
// the derived-pricing backfill.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber  string
	Status       OrderStatus
	Customer     Customer
	Items        []OrderItem
	Pricing      Pricing
	Payment      Payment
	PlacedAt     *time.Time
	ShippedAt    *time.Time
	DeliveredAt  *time.Time
	RefundedAt   *time.Time
	CancelledAt  *time.Time
	CancelReason string
}

// NewOrder creates an order from promoted cart lines. The order starts in
// order_placed status with payment pending.
func NewOrder(orderNumber string, customer Customer, items []OrderItem, pricing Pricing, paymentMethod string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if strings.TrimSpace(customer.Name) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if strings.TrimSpace(customer.Email) == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_EMAIL", "Customer email cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Order must contain at least one item")
	}
	if !pricing.IsConsistent() {
		return nil, shared.NewDomainError("INVALID_PRICING", "Pricing total does not match its components")
	}
	if pricing.Total.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICING", "Order total must be positive")
	}

	now := time.Now()
	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Status:            OrderStatusOrderPlaced,
		Customer:          customer,
		Items:             items,
		Pricing:           pricing,
		Payment: Payment{
			Method: paymentMethod,
			Status: PaymentStatusPending,
		},
		PlacedAt: &now,
	}
	for idx := range order.Items {
		order.Items[idx].OrderID = order.ID
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// TransitionTo moves the order to the target status, applying the
// status-specific side effects:
//
//   - order_received marks the payment completed and stamps paid_at
//   - shipped, delivered, refunded and cancelled stamp their timestamps
//
// Every successful call emits an OrderStatusChanged event plus the specific
// lifecycle event for the target status.
func (o *Order) TransitionTo(target OrderStatus, changedBy, reason string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", target))
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot transition order from %s to %s", o.Status, target))
	}

	from := o.Status
	now := time.Now()
	o.Status = target
	o.UpdatedAt = now

	switch target {
	case OrderStatusOrderReceived:
		o.Payment.Status = PaymentStatusCompleted
		o.Payment.PaidAt = &now
		o.AddDomainEvent(NewOrderPaymentReceivedEvent(o))
	case OrderStatusShipped:
		o.ShippedAt = &now
		o.AddDomainEvent(NewOrderShippedEvent(o))
	case OrderStatusDelivered:
		o.DeliveredAt = &now
		o.AddDomainEvent(NewOrderDeliveredEvent(o))
	case OrderStatusRefunded:
		o.RefundedAt = &now
		o.Payment.Status = PaymentStatusRefunded
		o.AddDomainEvent(NewOrderRefundedEvent(o))
	case OrderStatusCancelled:
		o.CancelledAt = &now
		o.CancelReason = reason
		o.AddDomainEvent(NewOrderCancelledEvent(o, reason))
	}

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target, changedBy, reason))

	return nil
}

// RecordPaymentTransaction attaches a payment processor reference. The
// payment status itself only changes through the order_received transition.
func (o *Order) RecordPaymentTransaction(method, transactionID string) {
	if method != "" {
		o.Payment.Method = method
	}
	o.Payment.TransactionID = transactionID
	o.UpdatedAt = time.Now()
}

// FillDerivedPricing backfills the manufacturer-cost and margin fields for
// orders created before cost tracking. The customer-visible amounts are
// never touched here.
func (o *Order) FillDerivedPricing(manufacturerCost, margin, marginPercent decimal.Decimal) {
	o.Pricing.ManufacturerCostTotal = manufacturerCost.Round(2)
	o.Pricing.MarginTotal = margin.Round(2)
	o.Pricing.MarginPercent = marginPercent.Round(2)
	o.UpdatedAt = time.Now()
}

// ManufacturerCost sums the wholesale cost across all line items
func (o *Order) ManufacturerCost() decimal.Decimal {
	cost := decimal.Zero
	for idx := range o.Items {
		cost = cost.Add(o.Items[idx].ManufacturerCost())
	}
	return cost
}

// Margin returns the realized gross profit: total minus collected tax minus
// manufacturer cost
func (o *Order) Margin() decimal.Decimal {
	return o.Pricing.Total.Sub(o.Pricing.Tax).Sub(o.ManufacturerCost()).Round(2)
}

// MarginPercent returns the margin as a percentage of the pre-tax subtotal
func (o *Order) MarginPercent() decimal.Decimal {
	if o.Pricing.Subtotal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return o.Margin().Div(o.Pricing.Subtotal).Mul(decimal.NewFromInt(100)).Round(2)
}

// IsTerminal reports whether the order reached a terminal status
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// IsPaid reports whether the payment completed
func (o *Order) IsPaid() bool {
	return o.Payment.Status == PaymentStatusCompleted
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// scanJSON decodes a JSONB column value into dst
func scanJSON(value any, dst any, typeName string) error {
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
		return fmt.Errorf("cannot scan %T into %s", value, typeName)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
