package ordering

import (
	"context"

	"github.com/google/uuid"

	"github.com/shadeworks/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its human-readable number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll finds orders with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// FindByStatus finds orders in a given status
	FindByStatus(ctx context.Context, status OrderStatus, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *Order) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain
	// events to the outbox table in the same transaction, ensuring guaranteed
	// event delivery
	SaveWithLockAndEvents(ctx context.Context, order *Order, events []shared.DomainEvent) error

	// SaveTransition atomically saves a status change together with its
	// history entry and outbox events. Transitions are never persisted
	// without their history record.
	SaveTransition(ctx context.Context, order *Order, entry *OrderStatusHistoryEntry, events []shared.DomainEvent) error

	// CreateFromCheckout atomically inserts a new order with its creation
	// history entry, persists the outbox events, and clears the session's
	// cart lines. Either everything applies or nothing does.
	CreateFromCheckout(ctx context.Context, order *Order, entry *OrderStatusHistoryEntry, sessionID string, events []shared.DomainEvent) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts orders in a given status
	CountByStatus(ctx context.Context, status OrderStatus) (int64, error)

	// ExistsByOrderNumber checks if an order number is already taken
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// GenerateOrderNumber generates the next unique order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}

// CartRepository defines the interface for cart line persistence
type CartRepository interface {
	// FindBySession finds all cart lines for a session, oldest first
	FindBySession(ctx context.Context, sessionID string) ([]CartLine, error)

	// FindLineByID finds a single cart line
	FindLineByID(ctx context.Context, id uuid.UUID) (*CartLine, error)

	// SaveLine creates or updates a cart line
	SaveLine(ctx context.Context, line *CartLine) error

	// DeleteLine removes a single cart line
	DeleteLine(ctx context.Context, id uuid.UUID) error

	// ClearSession removes every cart line for a session
	ClearSession(ctx context.Context, sessionID string) error

	// CountBySession counts the cart lines in a session
	CountBySession(ctx context.Context, sessionID string) (int64, error)
}

// OrderStatusHistoryRepository defines the interface for the append-only
// status history. There are no update or delete operations.
type OrderStatusHistoryRepository interface {
	// Append stores one history entry
	Append(ctx context.Context, entry *OrderStatusHistoryEntry) error

	// FindByOrderID returns an order's history in chronological order
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]OrderStatusHistoryEntry, error)

	// CountByOrderID counts the history entries for an order
	CountByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error)
}
