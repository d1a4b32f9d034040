package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/shadeworks/backend/internal/domain/invoicing"
	"github.com/shadeworks/backend/internal/domain/ledger"
	"github.com/shadeworks/backend/internal/domain/ordering"
	"github.com/shadeworks/backend/internal/domain/shared"
)

// TrailHandler projects every order, ledger and invoice event into the
// append-only audit trail. It subscribes to all events on the bus; writes
// happen off the business path, and a failed write is logged and dropped
// rather than failing the originating operation.
type TrailHandler struct {
	auditRepo shared.AuditTrailRepository
	logger    *zap.Logger
}

// NewTrailHandler creates a new audit trail handler
func NewTrailHandler(auditRepo shared.AuditTrailRepository, logger *zap.Logger) *TrailHandler {
	return &TrailHandler{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// EventTypes returns an empty slice: the trail receives every event
func (h *TrailHandler) EventTypes() []string {
	return nil
}

// Handle converts the event into an audit record and appends it
func (h *TrailHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	record, err := h.project(event)
	if err != nil {
		h.logger.Error("failed to build audit record",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return nil
	}
	if record == nil {
		return nil
	}

	if err := h.auditRepo.Append(ctx, record); err != nil {
		h.logger.Error("failed to append audit record",
			zap.String("event_type", event.EventType()),
			zap.String("resource_id", record.ResourceID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// project maps one domain event to its audit row. Unknown event types fall
// back to a generic record keyed by the event's aggregate.
func (h *TrailHandler) project(event shared.DomainEvent) (*shared.AuditRecord, error) {
	switch e := event.(type) {
	case *ordering.OrderCreatedEvent:
		record, err := shared.NewAuditRecord("order.created", "system", "order", e.OrderID, e.OrderNumber)
		if err != nil {
			return nil, err
		}
		return record.WithStates(nil, map[string]any{
			"status": ordering.OrderStatusOrderPlaced.String(),
			"total":  e.Total.StringFixed(2),
		}).WithMetadata(map[string]any{
			"customer_email": e.CustomerEmail,
			"item_count":     len(e.Items),
		}), nil

	case *ordering.OrderStatusChangedEvent:
		record, err := shared.NewAuditRecord("order.status_changed", e.ChangedBy, "order", e.OrderID, e.OrderNumber)
		if err != nil {
			return nil, err
		}
		record.WithStates(
			map[string]any{"status": e.FromStatus.String()},
			map[string]any{"status": e.ToStatus.String()},
		)
		if e.Reason != "" {
			record.WithMetadata(map[string]any{"reason": e.Reason})
		}
		return record, nil

	case *ordering.OrderCancelledEvent:
		record, err := shared.NewAuditRecord("order.cancelled", "system", "order", e.OrderID, e.OrderNumber)
		if err != nil {
			return nil, err
		}
		if e.Reason != "" {
			record.WithMetadata(map[string]any{"reason": e.Reason})
		}
		return record, nil

	case *ledger.LedgerEntriesPostedEvent:
		record, err := shared.NewAuditRecord("ledger.entries_posted", "system", "order_ledger", e.OrderID, e.OrderNumber)
		if err != nil {
			return nil, err
		}
		return record.WithMetadata(map[string]any{
			"posting_key": e.PostingKey,
			"entry_count": len(e.Entries),
		}), nil

	case *ledger.ShippedProfitRecordedEvent:
		record, err := shared.NewAuditRecord("ledger.profit_realized", "system", "order_ledger", e.OrderID, e.OrderNumber)
		if err != nil {
			return nil, err
		}
		return record.WithMetadata(map[string]any{
			"profit":            e.Profit.StringFixed(2),
			"manufacturer_cost": e.ManufacturerCost.StringFixed(2),
		}), nil

	case *invoicing.InvoiceCreatedEvent:
		record, err := shared.NewAuditRecord("invoice.created", "system", "invoice", e.InvoiceID, e.InvoiceNumber)
		if err != nil {
			return nil, err
		}
		return record.WithMetadata(map[string]any{
			"type":         e.InvoiceType.String(),
			"order_number": e.OrderNumber,
			"total":        e.Total.StringFixed(2),
		}), nil

	case *invoicing.InvoicePaymentRecordedEvent:
		record, err := shared.NewAuditRecord("invoice.payment_recorded", "system", "invoice", e.InvoiceID, e.InvoiceNumber)
		if err != nil {
			return nil, err
		}
		return record.WithMetadata(map[string]any{
			"amount":     e.Amount.StringFixed(2),
			"method":     e.Method,
			"amount_due": e.AmountDue.StringFixed(2),
		}), nil

	case *invoicing.InvoicePaidEvent:
		record, err := shared.NewAuditRecord("invoice.paid", "system", "invoice", e.InvoiceID, e.InvoiceNumber)
		if err != nil {
			return nil, err
		}
		return record.WithMetadata(map[string]any{
			"total":  e.Total.StringFixed(2),
			"method": e.Method,
		}), nil

	case *invoicing.InvoiceCancelledEvent:
		record, err := shared.NewAuditRecord("invoice.cancelled", "system", "invoice", e.InvoiceID, e.InvoiceNumber)
		if err != nil {
			return nil, err
		}
		if e.Reason != "" {
			record.WithMetadata(map[string]any{"reason": e.Reason})
		}
		return record, nil

	default:
		return shared.NewAuditRecord(event.EventType(), "system", event.AggregateType(), event.AggregateID(), "")
	}
}

// Ensure TrailHandler implements shared.EventHandler
var _ shared.EventHandler = (*TrailHandler)(nil)
