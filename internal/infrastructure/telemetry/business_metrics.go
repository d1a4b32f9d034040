// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the order pipeline.
// It tracks order placement, invoice payments, ledger postings, and the
// outstanding receivables balance.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	orderPlacedTotal  *Counter
	orderAmountTotal  *Counter
	paymentTotal      *Counter
	ledgerPostedTotal *Counter

	// Gauge metrics (point-in-time values)
	invoiceOpenCount         *Gauge
	invoiceOutstandingAmount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	invoiceProvider InvoiceMetricsProvider
}

// InvoiceMetricsProvider provides receivables data for periodic metrics
// collection. The interface lets the telemetry layer query invoice state
// without depending on the invoicing domain directly.
type InvoiceMetricsProvider interface {
	// GetOutstanding returns the count of open invoices and the total
	// amount still due, in cents
	GetOutstanding(ctx context.Context) (count int64, amountDueCents int64, err error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	InvoiceProvider InvoiceMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		invoiceProvider: cfg.InvoiceProvider,
	}

	// Initialize counter metrics
	var err error

	// Order metrics
	bm.orderPlacedTotal, err = NewCounter(
		cfg.Meter,
		"shadeworks_order_placed_total",
		"Total number of orders placed",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	bm.orderAmountTotal, err = NewCounter(
		cfg.Meter,
		"shadeworks_order_amount_total",
		"Total order amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	// Payment metrics
	bm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"shadeworks_payment_total",
		"Total number of invoice payments recorded",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	// Ledger metrics
	bm.ledgerPostedTotal, err = NewCounter(
		cfg.Meter,
		"shadeworks_ledger_posted_total",
		"Total number of ledger entries posted",
		"{entries}",
	)
	if err != nil {
		return nil, err
	}

	// Receivables gauge metrics
	bm.invoiceOpenCount, err = NewGauge(
		cfg.Meter,
		"shadeworks_invoice_open_count",
		"Number of invoices with an outstanding balance",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.invoiceOutstandingAmount, err = NewGauge(
		cfg.Meter,
		"shadeworks_invoice_outstanding_amount",
		"Total amount due across open invoices, in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Order Metrics
// =============================================================================

// RecordOrderPlaced records an order placement event.
// This should be called from the application layer when checkout completes.
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context) {
	bm.orderPlacedTotal.Inc(ctx)
}

// RecordOrderAmount records the order total.
// Amount should be in the smallest currency unit (cents).
func (bm *BusinessMetrics) RecordOrderAmount(ctx context.Context, amountCents int64) {
	bm.orderAmountTotal.Add(ctx, amountCents)
}

// RecordOrderWithAmount is a convenience method that records both order count and amount.
func (bm *BusinessMetrics) RecordOrderWithAmount(ctx context.Context, amount decimal.Decimal) {
	bm.RecordOrderPlaced(ctx)

	// Convert to cents (multiply by 100)
	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordOrderAmount(ctx, amountCents)
}

// =============================================================================
// Payment Metrics
// =============================================================================

// RecordPayment records a payment applied to an invoice.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, invoiceType, paymentMethod string) {
	bm.paymentTotal.Inc(ctx,
		AttrInvoiceType.String(invoiceType),
		AttrPaymentMethod.String(paymentMethod),
	)
}

// =============================================================================
// Ledger Metrics
// =============================================================================

// RecordLedgerPosted records a ledger entry posting, labeled by entry type.
func (bm *BusinessMetrics) RecordLedgerPosted(ctx context.Context, entryType string) {
	bm.ledgerPostedTotal.Inc(ctx,
		AttrEntryType.String(entryType),
	)
}

// =============================================================================
// Receivables Metrics
// =============================================================================

// RecordOutstanding records the current open-invoice count and total due.
// This is a gauge pair that should be updated periodically.
func (bm *BusinessMetrics) RecordOutstanding(ctx context.Context, count, amountDueCents int64) {
	bm.invoiceOpenCount.Record(ctx, count)
	bm.invoiceOutstandingAmount.Record(ctx, amountDueCents)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects receivables metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectReceivablesMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectReceivablesMetrics(ctx)
		}
	}
}

// collectReceivablesMetrics collects the open-invoice gauges.
func (bm *BusinessMetrics) collectReceivablesMetrics(ctx context.Context) {
	if bm.invoiceProvider == nil {
		bm.logger.Debug("No invoice provider configured, skipping receivables metrics collection")
		return
	}

	count, amountDueCents, err := bm.invoiceProvider.GetOutstanding(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect receivables metrics", zap.Error(err))
		return
	}

	bm.RecordOutstanding(ctx, count, amountDueCents)
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// =============================================================================
// Attribute Key Constants
// =============================================================================

// Business metrics attribute keys not already defined in metrics.go
var (
	// Additional business attributes can be added here
	AttrOrderSource = attribute.Key("order_source")
)
