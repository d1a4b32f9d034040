package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/backend/internal/domain/ledger"
)

// LedgerEntryModel is the persistence model for append-only ledger entries.
// The posting key carries a unique index so a posting batch can never be
// written twice, even under concurrent replays.
type LedgerEntryModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	Type        string          `gorm:"type:varchar(50);not null;index"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderNumber string          `gorm:"type:varchar(50)"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string          `gorm:"type:text"`
	Metadata    ledger.Metadata `gorm:"type:jsonb"`
	PostingKey  string          `gorm:"type:varchar(100);index:idx_ledger_posting_key,unique,where:posting_key <> ''"`
	CreatedAt   time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry
func (m *LedgerEntryModel) ToDomain() *ledger.LedgerEntry {
	return &ledger.LedgerEntry{
		ID:          m.ID,
		Type:        ledger.EntryType(m.Type),
		OrderID:     m.OrderID,
		OrderNumber: m.OrderNumber,
		Amount:      m.Amount,
		Description: m.Description,
		Metadata:    m.Metadata,
		PostingKey:  m.PostingKey,
		CreatedAt:   m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain LedgerEntry
func (m *LedgerEntryModel) FromDomain(e *ledger.LedgerEntry) {
	m.ID = e.ID
	m.Type = string(e.Type)
	m.OrderID = e.OrderID
	m.OrderNumber = e.OrderNumber
	m.Amount = e.Amount
	m.Description = e.Description
	m.Metadata = e.Metadata
	m.PostingKey = e.PostingKey
	m.CreatedAt = e.CreatedAt
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain LedgerEntry
func LedgerEntryModelFromDomain(e *ledger.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{}
	m.FromDomain(e)
	return m
}
