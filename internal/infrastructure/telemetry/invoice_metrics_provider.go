// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormInvoiceMetricsProvider implements InvoiceMetricsProvider using GORM.
// It queries the invoices table directly for aggregated receivables.
type GormInvoiceMetricsProvider struct {
	db *gorm.DB
}

// NewGormInvoiceMetricsProvider creates a new GormInvoiceMetricsProvider.
func NewGormInvoiceMetricsProvider(db *gorm.DB) *GormInvoiceMetricsProvider {
	return &GormInvoiceMetricsProvider{db: db}
}

// GetOutstanding returns the count of invoices with a balance due and the
// total outstanding amount in cents. Cancelled invoices are excluded.
func (p *GormInvoiceMetricsProvider) GetOutstanding(ctx context.Context) (int64, int64, error) {
	type result struct {
		OpenCount       int64 `gorm:"column:open_count"`
		OutstandingCent int64 `gorm:"column:outstanding_cents"`
	}

	var r result
	err := p.db.WithContext(ctx).
		Table("invoices").
		Select("COUNT(*) as open_count, COALESCE(SUM(amount_due * 100), 0) as outstanding_cents").
		Where("status NOT IN ?", []string{"paid", "cancelled"}).
		Where("amount_due > 0").
		Take(&r).Error

	if err != nil {
		return 0, 0, err
	}

	return r.OpenCount, r.OutstandingCent, nil
}
