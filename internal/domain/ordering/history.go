package ordering

import (
	"time"

	"github.com/google/uuid"

	"github.com/shadeworks/backend/internal/domain/shared"
)

// OrderStatusHistoryEntry records one status transition. Entries are
// append-only: one per transition, including the initial creation entry
// whose FromStatus is nil. Never updated or deleted.
type OrderStatusHistoryEntry struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	OrderNumber string
	FromStatus  *OrderStatus
	ToStatus    OrderStatus
	ChangedBy   string
	ChangedAt   time.Time
	Reason      string
}

// NewStatusHistoryEntry records a transition between two statuses
func NewStatusHistoryEntry(order *Order, from, to OrderStatus, changedBy, reason string) (*OrderStatusHistoryEntry, error) {
	if !to.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Target status is not valid")
	}
	return &OrderStatusHistoryEntry{
		ID:          uuid.New(),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		FromStatus:  &from,
		ToStatus:    to,
		ChangedBy:   changedBy,
		ChangedAt:   time.Now(),
		Reason:      reason,
	}, nil
}

// NewCreationHistoryEntry records the initial entry for a freshly placed
// order. FromStatus is nil because the order did not exist before.
func NewCreationHistoryEntry(order *Order, changedBy string) *OrderStatusHistoryEntry {
	return &OrderStatusHistoryEntry{
		ID:          uuid.New(),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		FromStatus:  nil,
		ToStatus:    order.Status,
		ChangedBy:   changedBy,
		ChangedAt:   time.Now(),
		Reason:      "Order created",
	}
}

// IsCreation reports whether this is the initial creation entry
func (e *OrderStatusHistoryEntry) IsCreation() bool {
	return e.FromStatus == nil
}
