package ordering

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceIssueCode classifies why a cart line failed price validation
type PriceIssueCode string

const (
	// PriceIssueExpiredSnapshot means the line's snapshot is older than the freshness window
	PriceIssueExpiredSnapshot PriceIssueCode = "EXPIRED_SNAPSHOT"

	// PriceIssueMismatch means the cart price drifted from the snapshot price
	PriceIssueMismatch PriceIssueCode = "PRICE_MISMATCH"
)

// PriceIssue describes one offending cart line. CartPrice and SnapshotPrice
// are only set for mismatches; CapturedAt is only set for expirations.
type PriceIssue struct {
	LineID        uuid.UUID       `json:"lineId"`
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName,omitempty"`
	Code          PriceIssueCode  `json:"code"`
	Reason        string          `json:"reason"`
	CartPrice     decimal.Decimal `json:"cartPrice,omitempty"`
	SnapshotPrice decimal.Decimal `json:"snapshotPrice,omitempty"`
	CapturedAt    *time.Time      `json:"capturedAt,omitempty"`
}

// NewExpiredSnapshotIssue builds the issue for a stale snapshot
func NewExpiredSnapshotIssue(line CartLine) PriceIssue {
	issue := PriceIssue{
		LineID:      line.ID,
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		Code:        PriceIssueExpiredSnapshot,
		Reason:      "Price snapshot expired",
	}
	if line.PriceSnapshot != nil {
		captured := line.PriceSnapshot.CapturedAt
		issue.CapturedAt = &captured
	}
	return issue
}

// NewPriceMismatchIssue builds the issue for a cart/snapshot price divergence
func NewPriceMismatchIssue(line CartLine, cartPrice, snapshotPrice decimal.Decimal) PriceIssue {
	return PriceIssue{
		LineID:        line.ID,
		ProductID:     line.ProductID,
		ProductName:   line.ProductName,
		Code:          PriceIssueMismatch,
		Reason:        "Price mismatch",
		CartPrice:     cartPrice,
		SnapshotPrice: snapshotPrice,
	}
}

// PriceValidationError aborts a checkout whose cart lines failed snapshot
// validation. It carries every offending line, not just the first, so the
// caller can show the customer exactly what changed.
type PriceValidationError struct {
	Issues []PriceIssue
}

// Error implements the error interface
func (e *PriceValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "price validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.ProductID, issue.Reason))
	}
	return fmt.Sprintf("price validation failed for %d line(s): %s", len(e.Issues), strings.Join(parts, "; "))
}

// Add appends an issue to the error
func (e *PriceValidationError) Add(issue PriceIssue) {
	e.Issues = append(e.Issues, issue)
}

// HasIssues reports whether any line failed validation
func (e *PriceValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}
