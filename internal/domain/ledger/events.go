package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/backend/internal/domain/shared"
)

// Aggregate type constant. Ledger events are keyed by the order whose
// entries were posted.
const AggregateTypeOrderLedger = "OrderLedger"

// Event type constants
const (
	EventTypeLedgerEntriesPosted   = "LedgerEntriesPosted"
	EventTypeShippedProfitRecorded = "ShippedProfitRecorded"
)

// EntryInfo summarizes one posted entry for event payloads
type EntryInfo struct {
	EntryID uuid.UUID       `json:"entry_id"`
	Type    EntryType       `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
}

// LedgerEntriesPostedEvent is raised when a batch of entries is appended
// for an order
type LedgerEntriesPostedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	PostingKey  string      `json:"posting_key"`
	Entries     []EntryInfo `json:"entries"`
}

// NewLedgerEntriesPostedEvent creates a new LedgerEntriesPostedEvent
func NewLedgerEntriesPostedEvent(orderID uuid.UUID, orderNumber, postingKey string, entries []*LedgerEntry) *LedgerEntriesPostedEvent {
	infos := make([]EntryInfo, len(entries))
	for i, entry := range entries {
		infos[i] = EntryInfo{EntryID: entry.ID, Type: entry.Type, Amount: entry.Amount}
	}
	return &LedgerEntriesPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLedgerEntriesPosted, AggregateTypeOrderLedger, orderID),
		OrderID:         orderID,
		OrderNumber:     orderNumber,
		PostingKey:      postingKey,
		Entries:         infos,
	}
}

// EventType returns the event type name
func (e *LedgerEntriesPostedEvent) EventType() string {
	return EventTypeLedgerEntriesPosted
}

// ShippedProfitRecordedEvent is raised when the manufacturer payable is
// realized into paid cost and earned margin at ship time
type ShippedProfitRecordedEvent struct {
	shared.BaseDomainEvent
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	Profit           decimal.Decimal `json:"profit"`
	ManufacturerCost decimal.Decimal `json:"manufacturer_cost"`
	SalesTax         decimal.Decimal `json:"sales_tax"`
}

// NewShippedProfitRecordedEvent creates a new ShippedProfitRecordedEvent
func NewShippedProfitRecordedEvent(orderID uuid.UUID, orderNumber string, profit, manufacturerCost, salesTax decimal.Decimal) *ShippedProfitRecordedEvent {
	return &ShippedProfitRecordedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeShippedProfitRecorded, AggregateTypeOrderLedger, orderID),
		OrderID:          orderID,
		OrderNumber:      orderNumber,
		Profit:           profit,
		ManufacturerCost: manufacturerCost,
		SalesTax:         salesTax,
	}
}

// EventType returns the event type name
func (e *ShippedProfitRecordedEvent) EventType() string {
	return EventTypeShippedProfitRecorded
}
