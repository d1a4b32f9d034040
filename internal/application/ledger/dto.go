package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/backend/internal/domain/ledger"
)

// ==================== Request DTOs ====================

// SummaryFilter bounds the ledger summary to a date range. Both bounds are
// optional; an open range summarizes the whole ledger.
type SummaryFilter struct {
	FromDate *time.Time `form:"from" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to" time_format:"2006-01-02"`
}

// ==================== Response DTOs ====================

// EntryResponse represents one ledger entry in API responses
type EntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Metadata    ledger.Metadata `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PostEntriesResponse is the result of posting an order's entries.
// AlreadyPosted is true when the posting key was used before; the returned
// entries are then the originally posted batch, not a new one.
type PostEntriesResponse struct {
	OrderID       uuid.UUID       `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	Entries       []EntryResponse `json:"entries"`
	AlreadyPosted bool            `json:"already_posted"`
}

// ShipProfitResponse is the result of realizing profit at ship time
type ShipProfitResponse struct {
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	Profit           decimal.Decimal `json:"profit"`
	ManufacturerCost decimal.Decimal `json:"manufacturer_cost"`
	SalesTax         decimal.Decimal `json:"sales_tax"`
	AlreadyRecorded  bool            `json:"already_recorded"`
}

// TypeSummaryResponse aggregates one entry type within the summary range
type TypeSummaryResponse struct {
	Type  string          `json:"type"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// SummaryResponse is the per-type rollup of the ledger within a date range
type SummaryResponse struct {
	FromDate *time.Time            `json:"from_date,omitempty"`
	ToDate   *time.Time            `json:"to_date,omitempty"`
	ByType   []TypeSummaryResponse `json:"by_type"`
	NetTotal decimal.Decimal       `json:"net_total"`
}

// ==================== Converters ====================

// ToEntryResponse converts a domain ledger entry to a response DTO
func ToEntryResponse(entry *ledger.LedgerEntry) EntryResponse {
	return EntryResponse{
		ID:          entry.ID,
		Type:        entry.Type.String(),
		OrderID:     entry.OrderID,
		OrderNumber: entry.OrderNumber,
		Amount:      entry.Amount,
		Description: entry.Description,
		Metadata:    entry.Metadata,
		CreatedAt:   entry.CreatedAt,
	}
}

// ToEntryResponses converts domain ledger entries to response DTOs
func ToEntryResponses(entries []ledger.LedgerEntry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToEntryResponse(&entries[i])
	}
	return responses
}
