package event

import (
	"github.com/shadeworks/backend/internal/domain/invoicing"
	"github.com/shadeworks/backend/internal/domain/ledger"
	"github.com/shadeworks/backend/internal/domain/ordering"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
// All event schemas are currently at version 1; when a schema evolves, move its
// registration to RegisterVersioned on the VersionedSerializer with an upgrader chain.
func RegisterAllEvents(serializer EventRegistry) {
	// Ordering domain events
	serializer.Register(ordering.EventTypeOrderCreated, &ordering.OrderCreatedEvent{})
	serializer.Register(ordering.EventTypeOrderStatusChanged, &ordering.OrderStatusChangedEvent{})
	serializer.Register(ordering.EventTypeOrderPaymentReceived, &ordering.OrderPaymentReceivedEvent{})
	serializer.Register(ordering.EventTypeOrderShipped, &ordering.OrderShippedEvent{})
	serializer.Register(ordering.EventTypeOrderDelivered, &ordering.OrderDeliveredEvent{})
	serializer.Register(ordering.EventTypeOrderCancelled, &ordering.OrderCancelledEvent{})
	serializer.Register(ordering.EventTypeOrderRefunded, &ordering.OrderRefundedEvent{})

	// Ledger domain events
	serializer.Register(ledger.EventTypeLedgerEntriesPosted, &ledger.LedgerEntriesPostedEvent{})
	serializer.Register(ledger.EventTypeShippedProfitRecorded, &ledger.ShippedProfitRecordedEvent{})

	// Invoicing domain events
	serializer.Register(invoicing.EventTypeInvoiceCreated, &invoicing.InvoiceCreatedEvent{})
	serializer.Register(invoicing.EventTypeInvoiceIssued, &invoicing.InvoiceIssuedEvent{})
	serializer.Register(invoicing.EventTypeInvoicePaymentRecorded, &invoicing.InvoicePaymentRecordedEvent{})
	serializer.Register(invoicing.EventTypeInvoicePaid, &invoicing.InvoicePaidEvent{})
	serializer.Register(invoicing.EventTypeInvoiceCancelled, &invoicing.InvoiceCancelledEvent{})
}
