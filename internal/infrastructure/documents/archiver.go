package documents

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	invoicingapp "github.com/shadeworks/backend/internal/application/invoicing"
	"github.com/shadeworks/backend/internal/domain/invoicing"
	"github.com/shadeworks/backend/internal/infrastructure/config"
)

// Ensure InvoiceArchiver satisfies the application-layer renderer port
var _ invoicingapp.DocumentRenderer = (*InvoiceArchiver)(nil)

// InvoiceArchiver renders an invoice to PDF and archives it in document
// storage. The archived URL is recorded on the invoice by the caller.
type InvoiceArchiver struct {
	engine   *TemplateEngine
	renderer PDFRenderer
	storage  DocumentStorage
	timeout  time.Duration
	logger   *zap.Logger
}

// NewInvoiceArchiver wires a template engine, PDF renderer and storage
// backend into a single archival pipeline.
func NewInvoiceArchiver(engine *TemplateEngine, renderer PDFRenderer, storage DocumentStorage, cfg config.DocumentsConfig, logger *zap.Logger) *InvoiceArchiver {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.PDFTimeout
	if timeout == 0 {
		timeout = defaultChromeTimeout
	}

	return &InvoiceArchiver{
		engine:   engine,
		renderer: renderer,
		storage:  storage,
		timeout:  timeout,
		logger:   logger,
	}
}

// RenderAndArchive renders the invoice document and stores it, returning the
// archived document URL.
func (a *InvoiceArchiver) RenderAndArchive(ctx context.Context, invoice *invoicing.Invoice) (string, error) {
	html, err := a.engine.RenderInvoice(invoice)
	if err != nil {
		return "", err
	}

	result, err := a.renderer.Render(ctx, &RenderRequest{
		HTML:    html,
		Title:   invoice.InvoiceNumber,
		Timeout: a.timeout,
	})
	if err != nil {
		a.logger.Error("invoice rendering failed",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err))
		return "", err
	}

	key := DocumentKey(invoice)

	url, err := a.storage.Store(ctx, key, result.PDFData)
	if err != nil {
		a.logger.Error("invoice archival failed",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.String("key", key),
			zap.Error(err))
		return "", err
	}

	a.logger.Info("invoice document archived",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("key", key),
		zap.Int("pages", result.PageCount),
		zap.Duration("render_duration", result.RenderDuration))

	return url, nil
}

// DocumentKey builds the storage key for an invoice document.
// Key structure: invoices/{year}/{month}/{invoice_number}.pdf
func DocumentKey(invoice *invoicing.Invoice) string {
	issued := invoice.IssueDate
	if issued.IsZero() {
		issued = time.Now()
	}
	return fmt.Sprintf("invoices/%d/%02d/%s.pdf", issued.Year(), issued.Month(), invoice.InvoiceNumber)
}

// NewDocumentStorage selects a storage backend from configuration.
// Supported backends: "local" (default) and "s3".
func NewDocumentStorage(cfg config.DocumentsConfig, logger *zap.Logger) (DocumentStorage, error) {
	switch cfg.Storage {
	case "", "local":
		return NewLocalStorage(&LocalStorageConfig{
			BaseDir: cfg.LocalDir,
			Logger:  logger,
		})
	case "s3":
		return NewS3Storage(cfg, WithS3Logger(logger))
	default:
		return nil, fmt.Errorf("unknown document storage backend: %q", cfg.Storage)
	}
}
