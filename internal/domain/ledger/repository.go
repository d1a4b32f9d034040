package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/backend/internal/domain/shared"
)

// EntryFilter defines filtering options for ledger queries
type EntryFilter struct {
	shared.Filter
	OrderID  *uuid.UUID
	Type     *EntryType
	FromDate *time.Time
	ToDate   *time.Time
}

// TypeSummary aggregates entries of one type within a date range
type TypeSummary struct {
	Type  EntryType       `json:"type"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// LedgerRepository defines the interface for ledger persistence. The ledger
// is append-only: there are no update or delete operations.
type LedgerRepository interface {
	// FindByID finds a single entry
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// FindByOrderID returns all entries for an order, oldest first
	FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]LedgerEntry, error)

	// FindByOrderAndType returns an order's entries of one type
	FindByOrderAndType(ctx context.Context, orderID uuid.UUID, entryType EntryType) ([]LedgerEntry, error)

	// FindAll finds entries with filtering and pagination
	FindAll(ctx context.Context, filter EntryFilter) ([]LedgerEntry, error)

	// AppendPosting atomically appends a batch of entries under an
	// idempotency key and persists the given outbox events in the same
	// transaction. If the key was already used, nothing is written and
	// shared.ErrAlreadyExists is returned.
	AppendPosting(ctx context.Context, postingKey string, entries []*LedgerEntry, events []shared.DomainEvent) error

	// ExistsByOrderAndType checks whether an order already has an entry of
	// the given type
	ExistsByOrderAndType(ctx context.Context, orderID uuid.UUID, entryType EntryType) (bool, error)

	// ExistsByPostingKey checks whether a posting key was already used
	ExistsByPostingKey(ctx context.Context, postingKey string) (bool, error)

	// Count counts entries matching the filter
	Count(ctx context.Context, filter EntryFilter) (int64, error)

	// SummarizeByType groups entries by type within an optional date range,
	// returning count and signed total per type
	SummarizeByType(ctx context.Context, from, to *time.Time) ([]TypeSummary, error)
}
