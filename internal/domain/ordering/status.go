package ordering

// OrderStatus represents the lifecycle state of a customer order
type OrderStatus string

const (
	OrderStatusDraft           OrderStatus = "draft"
	OrderStatusCart            OrderStatus = "cart"
	OrderStatusOrderPlaced     OrderStatus = "order_placed"
	OrderStatusOrderReceived   OrderStatus = "order_received"
	OrderStatusManufacturing   OrderStatus = "manufacturing"
	OrderStatusQA              OrderStatus = "qa"
	OrderStatusShipped         OrderStatus = "shipped"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusIssueReported   OrderStatus = "issue_reported"
	OrderStatusRefundRequested OrderStatus = "refund_requested"
	OrderStatusRefunded        OrderStatus = "refunded"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// AllOrderStatuses lists every valid order status
var AllOrderStatuses = []OrderStatus{
	OrderStatusDraft,
	OrderStatusCart,
	OrderStatusOrderPlaced,
	OrderStatusOrderReceived,
	OrderStatusManufacturing,
	OrderStatusQA,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusIssueReported,
	OrderStatusRefundRequested,
	OrderStatusRefunded,
	OrderStatusCancelled,
}

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusCart, OrderStatusOrderPlaced, OrderStatusOrderReceived,
		OrderStatusManufacturing, OrderStatusQA, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusIssueReported, OrderStatusRefundRequested, OrderStatusRefunded, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal checks if the status admits no further transitions
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusRefunded || s == OrderStatusCancelled
}

// CanTransitionTo checks if transition to target status is allowed
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusCart || target == OrderStatusCancelled
	case OrderStatusCart:
		return target == OrderStatusOrderPlaced || target == OrderStatusCancelled
	case OrderStatusOrderPlaced:
		return target == OrderStatusOrderReceived || target == OrderStatusCancelled
	case OrderStatusOrderReceived:
		return target == OrderStatusManufacturing || target == OrderStatusRefundRequested
	case OrderStatusManufacturing:
		return target == OrderStatusQA || target == OrderStatusIssueReported
	case OrderStatusQA:
		return target == OrderStatusShipped || target == OrderStatusManufacturing || target == OrderStatusIssueReported
	case OrderStatusShipped:
		return target == OrderStatusDelivered || target == OrderStatusIssueReported
	case OrderStatusDelivered:
		return target == OrderStatusIssueReported || target == OrderStatusRefundRequested
	case OrderStatusIssueReported:
		return target == OrderStatusRefundRequested || target == OrderStatusManufacturing || target == OrderStatusCancelled
	case OrderStatusRefundRequested:
		return target == OrderStatusRefunded || target == OrderStatusCancelled
	case OrderStatusRefunded, OrderStatusCancelled:
		return false
	default:
		return false
	}
}

// AllowedTransitions returns the set of statuses reachable from s
func (s OrderStatus) AllowedTransitions() []OrderStatus {
	var out []OrderStatus
	for _, target := range AllOrderStatuses {
		if s.CanTransitionTo(target) {
			out = append(out, target)
		}
	}
	return out
}
