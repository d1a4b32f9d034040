package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shadeworks/backend/internal/domain/ordering"
	"github.com/shadeworks/backend/internal/domain/shared"
)

// OrderShippedHandler realizes the manufacturer payable into paid cost and
// earned margin when an OrderShipped event arrives. The underlying posting is
// idempotent, so redelivery is harmless.
type OrderShippedHandler struct {
	ledgerService *LedgerService
	logger        *zap.Logger
}

// NewOrderShippedHandler creates a new handler for order shipped events
func NewOrderShippedHandler(ledgerService *LedgerService, logger *zap.Logger) *OrderShippedHandler {
	return &OrderShippedHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderShippedHandler) EventTypes() []string {
	return []string{ordering.EventTypeOrderShipped}
}

// Handle processes an OrderShippedEvent by recording the shipped profit
func (h *OrderShippedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	shippedEvent, ok := event.(*ordering.OrderShippedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", ordering.EventTypeOrderShipped),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			ordering.EventTypeOrderShipped, event.EventType())
	}

	result, err := h.ledgerService.RecordShippedProfit(ctx, shippedEvent.OrderID)
	if err != nil {
		h.logger.Error("failed to record shipped profit",
			zap.String("order_id", shippedEvent.OrderID.String()),
			zap.String("order_number", shippedEvent.OrderNumber),
			zap.Error(err),
		)
		return fmt.Errorf("failed to record shipped profit: %w", err)
	}

	if result.AlreadyRecorded {
		h.logger.Warn("shipped profit already recorded, skipping",
			zap.String("order_id", shippedEvent.OrderID.String()),
			zap.String("order_number", shippedEvent.OrderNumber),
		)
		return nil
	}

	h.logger.Info("shipped profit realized from event",
		zap.String("order_id", shippedEvent.OrderID.String()),
		zap.String("order_number", shippedEvent.OrderNumber),
		zap.String("profit", result.Profit.StringFixed(2)),
	)

	return nil
}

// Ensure OrderShippedHandler implements shared.EventHandler
var _ shared.EventHandler = (*OrderShippedHandler)(nil)
