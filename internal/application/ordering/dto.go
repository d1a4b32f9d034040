package ordering

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/backend/internal/domain/ordering"
)

// ==================== Request DTOs ====================

// TransitionRequest represents a request to move an order to a new status
type TransitionRequest struct {
	NewStatus string `json:"new_status" binding:"required,orderstatus"`
	Reason    string `json:"reason" binding:"max=500"`
}

// OrderListFilter defines filtering options for order list queries
type OrderListFilter struct {
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir"`
	Search        string     `form:"search"`
	Status        *string    `form:"status"`
	CustomerEmail *string    `form:"customer_email"`
	StartDate     *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate       *time.Time `form:"end_date" time_format:"2006-01-02"`
}

// ==================== Response DTOs ====================

// AddressResponse represents a postal address in API responses
type AddressResponse struct {
	Street1    string `json:"street1"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// CustomerResponse represents the buyer frozen onto an order
type CustomerResponse struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone,omitempty"`
	Address AddressResponse `json:"address"`
}

// PricingResponse represents an order's frozen money summary
type PricingResponse struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	Tax                   decimal.Decimal `json:"tax"`
	TaxRate               decimal.Decimal `json:"tax_rate"`
	Shipping              decimal.Decimal `json:"shipping"`
	Discount              decimal.Decimal `json:"discount"`
	Total                 decimal.Decimal `json:"total"`
	Currency              string          `json:"currency"`
	ManufacturerCostTotal decimal.Decimal `json:"manufacturer_cost_total"`
	MarginTotal           decimal.Decimal `json:"margin_total"`
	MarginPercent         decimal.Decimal `json:"margin_percent"`
}

// PaymentResponse represents an order's payment state
type PaymentResponse struct {
	Method        string     `json:"method,omitempty"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transaction_id,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// OrderItemResponse represents one order line in API responses
type OrderItemResponse struct {
	ID               uuid.UUID                `json:"id"`
	ProductID        string                   `json:"product_id"`
	ProductName      string                   `json:"product_name,omitempty"`
	Quantity         int                      `json:"quantity"`
	WidthIn          decimal.Decimal          `json:"width_in"`
	HeightIn         decimal.Decimal          `json:"height_in"`
	RoomLabel        string                   `json:"room_label,omitempty"`
	Configuration    json.RawMessage          `json:"configuration,omitempty"`
	UnitPrice        decimal.Decimal          `json:"unit_price"`
	LineTotal        decimal.Decimal          `json:"line_total"`
	ManufacturerCost decimal.Decimal          `json:"manufacturer_cost"`
	PriceSnapshots   ordering.PriceSnapshots  `json:"price_snapshots,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	OrderNumber  string              `json:"order_number"`
	Status       string              `json:"status"`
	Customer     CustomerResponse    `json:"customer"`
	Items        []OrderItemResponse `json:"items"`
	Pricing      PricingResponse     `json:"pricing"`
	Payment      PaymentResponse     `json:"payment"`
	PlacedAt     *time.Time          `json:"placed_at,omitempty"`
	ShippedAt    *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt  *time.Time          `json:"delivered_at,omitempty"`
	RefundedAt   *time.Time          `json:"refunded_at,omitempty"`
	CancelledAt  *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason string              `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Version      int                 `json:"version"`
}

// OrderListItemResponse is the compact order shape for list views
type OrderListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	Status        string          `json:"status"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	ItemCount     int             `json:"item_count"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	PaymentStatus string          `json:"payment_status"`
	PlacedAt      *time.Time      `json:"placed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// HistoryEntryResponse represents one status transition in API responses
type HistoryEntryResponse struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     uuid.UUID  `json:"order_id"`
	OrderNumber string     `json:"order_number"`
	FromStatus  *string    `json:"from_status"`
	ToStatus    string     `json:"to_status"`
	ChangedBy   string     `json:"changed_by"`
	ChangedAt   time.Time  `json:"changed_at"`
	Reason      string     `json:"reason,omitempty"`
}

// OrderWithHistoryResponse bundles an order with its full transition history
type OrderWithHistoryResponse struct {
	Order   OrderResponse          `json:"order"`
	History []HistoryEntryResponse `json:"history"`
}

// ==================== Converters ====================

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(order *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i := range order.Items {
		items[i] = ToOrderItemResponse(&order.Items[i])
	}
	return OrderResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status.String(),
		Customer: CustomerResponse{
			Name:  order.Customer.Name,
			Email: order.Customer.Email,
			Phone: order.Customer.Phone,
			Address: AddressResponse{
				Street1:    order.Customer.Address.Street1(),
				Street2:    order.Customer.Address.Street2(),
				City:       order.Customer.Address.City(),
				State:      order.Customer.Address.State(),
				PostalCode: order.Customer.Address.PostalCode(),
			},
		},
		Items: items,
		Pricing: PricingResponse{
			Subtotal:              order.Pricing.Subtotal,
			Tax:                   order.Pricing.Tax,
			TaxRate:               order.Pricing.TaxRate,
			Shipping:              order.Pricing.Shipping,
			Discount:              order.Pricing.Discount,
			Total:                 order.Pricing.Total,
			Currency:              order.Pricing.Currency,
			ManufacturerCostTotal: order.Pricing.ManufacturerCostTotal,
			MarginTotal:           order.Pricing.MarginTotal,
			MarginPercent:         order.Pricing.MarginPercent,
		},
		Payment: PaymentResponse{
			Method:        order.Payment.Method,
			Status:        string(order.Payment.Status),
			TransactionID: order.Payment.TransactionID,
			PaidAt:        order.Payment.PaidAt,
		},
		PlacedAt:     order.PlacedAt,
		ShippedAt:    order.ShippedAt,
		DeliveredAt:  order.DeliveredAt,
		RefundedAt:   order.RefundedAt,
		CancelledAt:  order.CancelledAt,
		CancelReason: order.CancelReason,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
		Version:      order.Version,
	}
}

// ToOrderItemResponse converts a domain order item to a response DTO
func ToOrderItemResponse(item *ordering.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:               item.ID,
		ProductID:        item.ProductID,
		ProductName:      item.ProductName,
		Quantity:         item.Quantity,
		WidthIn:          item.WidthIn,
		HeightIn:         item.HeightIn,
		RoomLabel:        item.RoomLabel,
		Configuration:    item.Configuration,
		UnitPrice:        item.UnitPrice,
		LineTotal:        item.LineTotal,
		ManufacturerCost: item.ManufacturerCost(),
		PriceSnapshots:   item.Snapshots,
	}
}

// ToOrderListItemResponses converts domain orders to compact list DTOs
func ToOrderListItemResponses(orders []ordering.Order) []OrderListItemResponse {
	responses := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		order := &orders[i]
		responses[i] = OrderListItemResponse{
			ID:            order.ID,
			OrderNumber:   order.OrderNumber,
			Status:        order.Status.String(),
			CustomerName:  order.Customer.Name,
			CustomerEmail: order.Customer.Email,
			ItemCount:     order.ItemCount(),
			Total:         order.Pricing.Total,
			Currency:      order.Pricing.Currency,
			PaymentStatus: string(order.Payment.Status),
			PlacedAt:      order.PlacedAt,
			CreatedAt:     order.CreatedAt,
		}
	}
	return responses
}

// ToHistoryEntryResponse converts a domain history entry to a response DTO
func ToHistoryEntryResponse(entry *ordering.OrderStatusHistoryEntry) HistoryEntryResponse {
	resp := HistoryEntryResponse{
		ID:          entry.ID,
		OrderID:     entry.OrderID,
		OrderNumber: entry.OrderNumber,
		ToStatus:    entry.ToStatus.String(),
		ChangedBy:   entry.ChangedBy,
		ChangedAt:   entry.ChangedAt,
		Reason:      entry.Reason,
	}
	if entry.FromStatus != nil {
		from := entry.FromStatus.String()
		resp.FromStatus = &from
	}
	return resp
}

// ToHistoryEntryResponses converts history entries to response DTOs
func ToHistoryEntryResponses(entries []ordering.OrderStatusHistoryEntry) []HistoryEntryResponse {
	responses := make([]HistoryEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToHistoryEntryResponse(&entries[i])
	}
	return responses
}
