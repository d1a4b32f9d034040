package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/backend/internal/domain/ordering"
)

// OrderModel is the persistence model for orders. The customer, pricing and
// payment blocks are stored as JSONB so the frozen checkout state survives
// schema changes in the catalog.
type OrderModel struct {
	AggregateModel
	OrderNumber  string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status       string            `gorm:"type:varchar(30);not null;index"`
	Customer     ordering.Customer `gorm:"type:jsonb;not null"`
	Pricing      ordering.Pricing  `gorm:"type:jsonb;not null"`
	Payment      ordering.Payment  `gorm:"type:jsonb;not null"`
	PlacedAt     *time.Time
	ShippedAt    *time.Time
	DeliveredAt  *time.Time
	RefundedAt   *time.Time
	CancelledAt  *time.Time
	CancelReason string           `gorm:"type:text"`
	Items        []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *ordering.Order {
	order := &ordering.Order{
		OrderNumber:  m.OrderNumber,
		Status:       ordering.OrderStatus(m.Status),
		Customer:     m.Customer,
		Pricing:      m.Pricing,
		Payment:      m.Payment,
		PlacedAt:     m.PlacedAt,
		ShippedAt:    m.ShippedAt,
		DeliveredAt:  m.DeliveredAt,
		RefundedAt:   m.RefundedAt,
		CancelledAt:  m.CancelledAt,
		CancelReason: m.CancelReason,
	}
	m.PopulateAggregateRoot(&order.BaseAggregateRoot)
	order.Items = make([]ordering.OrderItem, len(m.Items))
	for i := range m.Items {
		order.Items[i] = *m.Items[i].ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *ordering.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.Status = string(o.Status)
	m.Customer = o.Customer
	m.Pricing = o.Pricing
	m.Payment = o.Payment
	m.PlacedAt = o.PlacedAt
	m.ShippedAt = o.ShippedAt
	m.DeliveredAt = o.DeliveredAt
	m.RefundedAt = o.RefundedAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i].FromDomain(&o.Items[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *ordering.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for order line items. The price
// snapshot column keeps the full breakdown captured at pricing time.
type OrderItemModel struct {
	ID            uuid.UUID               `gorm:"type:uuid;primary_key"`
	OrderID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	ProductID     string                  `gorm:"type:varchar(100);not null"`
	ProductName   string                  `gorm:"type:varchar(255)"`
	Quantity      int                     `gorm:"not null"`
	WidthIn       decimal.Decimal         `gorm:"type:decimal(10,3)"`
	HeightIn      decimal.Decimal         `gorm:"type:decimal(10,3)"`
	RoomLabel     string                  `gorm:"type:varchar(100)"`
	Configuration json.RawMessage         `gorm:"type:jsonb"`
	UnitPrice     decimal.Decimal         `gorm:"type:decimal(12,2);not null"`
	LineTotal     decimal.Decimal         `gorm:"type:decimal(12,2);not null"`
	Snapshots     ordering.PriceSnapshots `gorm:"type:jsonb"`
	CreatedAt     time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem
func (m *OrderItemModel) ToDomain() *ordering.OrderItem {
	return &ordering.OrderItem{
		ID:            m.ID,
		OrderID:       m.OrderID,
		ProductID:     m.ProductID,
		ProductName:   m.ProductName,
		Quantity:      m.Quantity,
		WidthIn:       m.WidthIn,
		HeightIn:      m.HeightIn,
		RoomLabel:     m.RoomLabel,
		Configuration: m.Configuration,
		UnitPrice:     m.UnitPrice,
		LineTotal:     m.LineTotal,
		Snapshots:     m.Snapshots,
		CreatedAt:     m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain OrderItem
func (m *OrderItemModel) FromDomain(i *ordering.OrderItem) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.Quantity = i.Quantity
	m.WidthIn = i.WidthIn
	m.HeightIn = i.HeightIn
	m.RoomLabel = i.RoomLabel
	m.Configuration = i.Configuration
	m.UnitPrice = i.UnitPrice
	m.LineTotal = i.LineTotal
	m.Snapshots = i.Snapshots
	m.CreatedAt = i.CreatedAt
}

// CartLineModel is the persistence model for session cart lines. Lines are
// deleted on checkout, so this table only ever holds in-flight sessions.
type CartLineModel struct {
	ID              uuid.UUID               `gorm:"type:uuid;primary_key"`
	SessionID       string                  `gorm:"type:varchar(100);not null;index"`
	ProductID       string                  `gorm:"type:varchar(100);not null"`
	ProductName     string                  `gorm:"type:varchar(255)"`
	Quantity        int                     `gorm:"not null"`
	WidthIn         decimal.Decimal         `gorm:"type:decimal(10,3)"`
	HeightIn        decimal.Decimal         `gorm:"type:decimal(10,3)"`
	RoomLabel       string                  `gorm:"type:varchar(100)"`
	Configuration   json.RawMessage         `gorm:"type:jsonb"`
	UnitPrice       decimal.Decimal         `gorm:"type:decimal(12,2);not null"`
	CalculatedPrice *decimal.Decimal        `gorm:"type:decimal(12,2)"`
	LineTotal       *decimal.Decimal        `gorm:"type:decimal(12,2)"`
	PriceSnapshot   *ordering.PriceSnapshot `gorm:"type:jsonb"`
	CreatedAt       time.Time               `gorm:"not null"`
	UpdatedAt       time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CartLineModel) TableName() string {
	return "cart_lines"
}

// ToDomain converts the persistence model to a domain CartLine
func (m *CartLineModel) ToDomain() *ordering.CartLine {
	return &ordering.CartLine{
		ID:              m.ID,
		SessionID:       m.SessionID,
		ProductID:       m.ProductID,
		ProductName:     m.ProductName,
		Quantity:        m.Quantity,
		WidthIn:         m.WidthIn,
		HeightIn:        m.HeightIn,
		RoomLabel:       m.RoomLabel,
		Configuration:   m.Configuration,
		UnitPrice:       m.UnitPrice,
		CalculatedPrice: m.CalculatedPrice,
		LineTotal:       m.LineTotal,
		PriceSnapshot:   m.PriceSnapshot,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain CartLine
func (m *CartLineModel) FromDomain(l *ordering.CartLine) {
	m.ID = l.ID
	m.SessionID = l.SessionID
	m.ProductID = l.ProductID
	m.ProductName = l.ProductName
	m.Quantity = l.Quantity
	m.WidthIn = l.WidthIn
	m.HeightIn = l.HeightIn
	m.RoomLabel = l.RoomLabel
	m.Configuration = l.Configuration
	m.UnitPrice = l.UnitPrice
	m.CalculatedPrice = l.CalculatedPrice
	m.LineTotal = l.LineTotal
	m.PriceSnapshot = l.PriceSnapshot
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt
}

// CartLineModelFromDomain creates a new persistence model from a domain CartLine
func CartLineModelFromDomain(l *ordering.CartLine) *CartLineModel {
	m := &CartLineModel{}
	m.FromDomain(l)
	return m
}

// OrderStatusHistoryModel is the persistence model for the append-only status
// history. Rows are inserted once and never updated.
type OrderStatusHistoryModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderNumber string    `gorm:"type:varchar(50);not null"`
	FromStatus  *string   `gorm:"type:varchar(30)"`
	ToStatus    string    `gorm:"type:varchar(30);not null"`
	ChangedBy   string    `gorm:"type:varchar(100);not null"`
	ChangedAt   time.Time `gorm:"not null;index"`
	Reason      string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OrderStatusHistoryModel) TableName() string {
	return "order_status_history"
}

// ToDomain converts the persistence model to a domain history entry
func (m *OrderStatusHistoryModel) ToDomain() *ordering.OrderStatusHistoryEntry {
	entry := &ordering.OrderStatusHistoryEntry{
		ID:          m.ID,
		OrderID:     m.OrderID,
		OrderNumber: m.OrderNumber,
		ToStatus:    ordering.OrderStatus(m.ToStatus),
		ChangedBy:   m.ChangedBy,
		ChangedAt:   m.ChangedAt,
		Reason:      m.Reason,
	}
	if m.FromStatus != nil {
		from := ordering.OrderStatus(*m.FromStatus)
		entry.FromStatus = &from
	}
	return entry
}

// FromDomain populates the persistence model from a domain history entry
func (m *OrderStatusHistoryModel) FromDomain(e *ordering.OrderStatusHistoryEntry) {
	m.ID = e.ID
	m.OrderID = e.OrderID
	m.OrderNumber = e.OrderNumber
	m.FromStatus = nil
	if e.FromStatus != nil {
		from := string(*e.FromStatus)
		m.FromStatus = &from
	}
	m.ToStatus = string(e.ToStatus)
	m.ChangedBy = e.ChangedBy
	m.ChangedAt = e.ChangedAt
	m.Reason = e.Reason
}

// OrderStatusHistoryModelFromDomain creates a new persistence model from a
// domain history entry
func OrderStatusHistoryModelFromDomain(e *ordering.OrderStatusHistoryEntry) *OrderStatusHistoryModel {
	m := &OrderStatusHistoryModel{}
	m.FromDomain(e)
	return m
}
