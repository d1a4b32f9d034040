package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/shadeworks/backend/internal/application/invoicing"
)

// backfillActorID marks backfill-created records in the audit trail
const backfillActorID = "system:scheduler"

// InvoiceBackfiller creates invoices for orders that are missing one
type InvoiceBackfiller interface {
	GenerateMissing(ctx context.Context, actorID string) (*invoicing.BackfillResponse, error)
}

// InvoiceBackfillJob scans placed orders nightly and issues a customer
// invoice for any order that lost its invoice to a crash or a cancelled
// document. Safe to run repeatedly: orders with an open invoice are skipped.
type InvoiceBackfillJob struct {
	backfiller InvoiceBackfiller
	logger     *zap.Logger
}

// NewInvoiceBackfillJob creates the nightly invoice backfill job
func NewInvoiceBackfillJob(backfiller InvoiceBackfiller, logger *zap.Logger) *InvoiceBackfillJob {
	return &InvoiceBackfillJob{
		backfiller: backfiller,
		logger:     logger,
	}
}

// Name implements Job
func (j *InvoiceBackfillJob) Name() string {
	return "invoice_backfill"
}

// Run implements Job
func (j *InvoiceBackfillJob) Run(ctx context.Context) error {
	result, err := j.backfiller.GenerateMissing(ctx, backfillActorID)
	if err != nil {
		return err
	}

	j.logger.Info("Invoice backfill scan finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", result.Skipped),
		zap.Int("failures", len(result.Failures)),
	)

	return nil
}
