package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shadeworks/backend/internal/domain/invoicing"
	"github.com/shadeworks/backend/internal/domain/ordering"
	"github.com/shadeworks/backend/internal/domain/shared"
)

// Config holds the invoicing policies. Values come from config.
type Config struct {
	DueDays int
}

// DefaultConfig returns the built-in invoicing policies
func DefaultConfig() Config {
	return Config{DueDays: 30}
}

// DocumentRenderer renders an invoice into an archived document and returns
// the stored object's URL
type DocumentRenderer interface {
	RenderAndArchive(ctx context.Context, invoice *invoicing.Invoice) (string, error)
}

// ShareTokenSigner issues and validates customer-facing invoice share tokens
type ShareTokenSigner interface {
	Sign(invoiceID uuid.UUID) (token string, expiresAt time.Time, err error)
	Verify(token string) (uuid.UUID, error)
}

// backfillPageSize bounds each scan batch of the missing-invoice backfill
const backfillPageSize = 100

// InvoiceService generates and manages invoices. An invoice is a projection
// of its source order: totals are copied verbatim from the order's frozen
// pricing and never recomputed here.
type InvoiceService struct {
	invoiceRepo invoicing.InvoiceRepository
	orderRepo   ordering.OrderRepository
	renderer    DocumentRenderer
	signer      ShareTokenSigner
	config      Config
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	orderRepo ordering.OrderRepository,
	renderer DocumentRenderer,
	signer ShareTokenSigner,
	config Config,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		renderer:    renderer,
		signer:      signer,
		config:      config,
		logger:      logger,
	}
}

// CreateFromOrder generates an invoice of the given type for an order. At
// most one non-cancelled invoice of each type may exist per order unless the
// caller explicitly allows a duplicate.
func (s *InvoiceService) CreateFromOrder(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	invoiceType := invoicing.InvoiceType(req.Type)
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVOICE_TYPE", "Invoice type must be customer or manufacturer")
	}

	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if !req.AllowDuplicate {
		exists, err := s.invoiceRepo.ExistsOpenByOrderAndType(ctx, order.ID, invoiceType)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, invoicing.NewDuplicateInvoiceError(order.ID, invoiceType)
		}
	}

	invoice, err := s.buildInvoice(ctx, order, invoiceType, req.DueDate)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		invoice.SetNotes(req.Notes)
	}

	events := invoice.GetDomainEvents()
	if err := s.invoiceRepo.SaveWithLockAndEvents(ctx, invoice, events); err != nil {
		return nil, err
	}
	invoice.ClearDomainEvents()

	s.logger.Info("invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("type", invoice.Type.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", invoice.Total.StringFixed(2)),
	)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// buildInvoice assembles the invoice aggregate for one order
func (s *InvoiceService) buildInvoice(ctx context.Context, order *ordering.Order, invoiceType invoicing.InvoiceType, dueDate *time.Time) (*invoicing.Invoice, error) {
	invoiceNumber, err := s.invoiceRepo.GenerateInvoiceNumber(ctx, invoiceType)
	if err != nil {
		return nil, err
	}

	billTo := invoicing.BillTo{
		Name:    order.Customer.Name,
		Email:   order.Customer.Email,
		Phone:   order.Customer.Phone,
		Address: order.Customer.Address,
	}

	var items []invoicing.InvoiceItem
	var totals invoicing.Totals
	switch invoiceType {
	case invoicing.InvoiceTypeManufacturer:
		items = manufacturerItems(order)
		costTotal := order.ManufacturerCost()
		totals = invoicing.Totals{
			Subtotal: costTotal,
			Tax:      decimal.Zero,
			TaxRate:  decimal.Zero,
			Shipping: decimal.Zero,
			Discount: decimal.Zero,
			Total:    costTotal,
		}
	default:
		items = customerItems(order)
		totals = invoicing.Totals{
			Subtotal: order.Pricing.Subtotal,
			Tax:      order.Pricing.Tax,
			TaxRate:  order.Pricing.TaxRate,
			Shipping: order.Pricing.Shipping,
			Discount: order.Pricing.Discount,
			Total:    order.Pricing.Total,
		}
	}

	if dueDate == nil {
		due := time.Now().AddDate(0, 0, s.config.DueDays)
		dueDate = &due
	}

	invoice, err := invoicing.NewInvoice(invoiceNumber, invoiceType, order.ID, order.OrderNumber, billTo, items, totals, dueDate)
	if err != nil {
		return nil, err
	}

	if invoiceType == invoicing.InvoiceTypeCustomer && order.IsPaid() {
		invoice.MarkSettledByOrder(order.Payment.Method, order.Payment.TransactionID)
	}

	return invoice, nil
}

// customerItems explodes each order line into a retail invoice line with the
// option and accessory breakdown read from the frozen snapshot
func customerItems(order *ordering.Order) []invoicing.InvoiceItem {
	items := make([]invoicing.InvoiceItem, len(order.Items))
	for i := range order.Items {
		orderItem := &order.Items[i]
		item := invoicing.InvoiceItem{
			ID:          uuid.New(),
			ProductID:   orderItem.ProductID,
			ProductName: orderItem.ProductName,
			RoomLabel:   orderItem.RoomLabel,
			Quantity:    orderItem.Quantity,
			WidthIn:     orderItem.WidthIn,
			HeightIn:    orderItem.HeightIn,
			UnitPrice:   orderItem.UnitPrice,
			LineTotal:   orderItem.LineTotal,
		}
		if snapshot, ok := orderItem.Snapshot(); ok {
			for _, opt := range snapshot.CustomerPrice.OptionsBreakdown {
				item.Options = append(item.Options, invoicing.LineOption{
					Type:  opt.Type,
					Name:  opt.Name,
					Price: opt.Price,
				})
			}
			for _, acc := range snapshot.CustomerPrice.AccessoriesBreakdown {
				item.Accessories = append(item.Accessories, invoicing.LineAccessory{
					Name:     acc.Name,
					Code:     acc.Code,
					Price:    acc.Price,
					Quantity: acc.Quantity,
				})
			}
		}
		items[i] = item
	}
	return items
}

// manufacturerItems bills each order line at its wholesale cost
func manufacturerItems(order *ordering.Order) []invoicing.InvoiceItem {
	items := make([]invoicing.InvoiceItem, len(order.Items))
	for i := range order.Items {
		orderItem := &order.Items[i]
		unitCost := orderItem.UnitPrice.Mul(ordering.LegacyCostRatio).Round(2)
		if snapshot, ok := orderItem.Snapshot(); ok {
			unitCost = snapshot.UnitManufacturerCost().Round(2)
		}
		items[i] = invoicing.InvoiceItem{
			ID:          uuid.New(),
			ProductID:   orderItem.ProductID,
			ProductName: orderItem.ProductName,
			RoomLabel:   orderItem.RoomLabel,
			Quantity:    orderItem.Quantity,
			WidthIn:     orderItem.WidthIn,
			HeightIn:    orderItem.HeightIn,
			UnitPrice:   unitCost,
			LineTotal:   orderItem.ManufacturerCost(),
		}
	}
	return items
}

// Get retrieves an invoice by ID
func (s *InvoiceService) Get(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Update mutates the editable surface of an invoice: notes, due date, and
// the draft→issued / →cancelled status moves. Everything monetary and the
// order linkage are immutable.
func (s *InvoiceService) Update(ctx context.Context, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if req.Notes != nil {
		invoice.SetNotes(*req.Notes)
	}
	if req.DueDate != nil {
		invoice.SetDueDate(req.DueDate)
	}
	if req.Status != nil {
		switch invoicing.InvoiceStatus(*req.Status) {
		case invoicing.InvoiceStatusIssued:
			if err := invoice.Issue(); err != nil {
				return nil, err
			}
		case invoicing.InvoiceStatusCancelled:
			if err := invoice.Cancel("Cancelled via update"); err != nil {
				return nil, err
			}
		default:
			return nil, shared.NewDomainError("INVALID_STATUS_CHANGE", "Status can only be set to issued or cancelled")
		}
	}

	events := invoice.GetDomainEvents()
	if err := s.invoiceRepo.SaveWithLockAndEvents(ctx, invoice, events); err != nil {
		return nil, err
	}
	invoice.ClearDomainEvents()

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// RecordPayment applies a payment to an invoice
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, input PaymentInput) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.RecordPayment(input.Amount, input.Method, input.Reference, input.Notes); err != nil {
		return nil, err
	}

	events := invoice.GetDomainEvents()
	if err := s.invoiceRepo.SaveWithLockAndEvents(ctx, invoice, events); err != nil {
		return nil, err
	}
	invoice.ClearDomainEvents()

	s.logger.Info("invoice payment recorded",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("amount", input.Amount.StringFixed(2)),
		zap.String("status", invoice.Status.String()),
	)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceListItemResponse, int64, error) {
	domainFilter := invoicing.InvoiceFilter{
		Filter:   shared.DefaultFilter(),
		OrderID:  filter.OrderID,
		FromDate: filter.StartDate,
		ToDate:   filter.EndDate,
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Type != nil {
		invoiceType := invoicing.InvoiceType(*filter.Type)
		if !invoiceType.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_INVOICE_TYPE", "Invoice type must be customer or manufacturer")
		}
		domainFilter.Type = &invoiceType
	}
	if filter.Status != nil {
		status := invoicing.InvoiceStatus(*filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Unknown invoice status")
		}
		domainFilter.Status = &status
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToInvoiceListItemResponses(invoices), total, nil
}

// Summary aggregates all invoices by status and type
func (s *InvoiceService) Summary(ctx context.Context) (*invoicing.Summary, error) {
	return s.invoiceRepo.Summarize(ctx)
}

// GenerateMissing creates a customer invoice for every order that has no
// non-cancelled one. Per-order failures are collected and reported; the scan
// never aborts on a single bad order.
func (s *InvoiceService) GenerateMissing(ctx context.Context, actorID string) (*BackfillResponse, error) {
	result := &BackfillResponse{Created: []uuid.UUID{}}

	filter := shared.DefaultFilter()
	filter.PageSize = backfillPageSize
	filter.OrderDir = "asc"

	for page := 1; ; page++ {
		filter.Page = page
		orders, err := s.orderRepo.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		if len(orders) == 0 {
			break
		}

		for i := range orders {
			order := &orders[i]
			result.Scanned++

			exists, err := s.invoiceRepo.ExistsOpenByOrderAndType(ctx, order.ID, invoicing.InvoiceTypeCustomer)
			if err != nil {
				result.Failures = append(result.Failures, BackfillFailure{
					OrderID: order.ID, OrderNumber: order.OrderNumber, Error: err.Error(),
				})
				continue
			}
			if exists {
				result.Skipped++
				continue
			}

			invoice, err := s.buildInvoice(ctx, order, invoicing.InvoiceTypeCustomer, nil)
			if err == nil {
				err = s.invoiceRepo.SaveWithLockAndEvents(ctx, invoice, invoice.GetDomainEvents())
			}
			if err != nil {
				s.logger.Warn("backfill skipped order",
					zap.String("order_number", order.OrderNumber),
					zap.Error(err),
				)
				result.Failures = append(result.Failures, BackfillFailure{
					OrderID: order.ID, OrderNumber: order.OrderNumber, Error: err.Error(),
				})
				continue
			}
			invoice.ClearDomainEvents()
			result.Created = append(result.Created, invoice.ID)
		}

		if len(orders) < backfillPageSize {
			break
		}
	}

	s.logger.Info("invoice backfill finished",
		zap.String("actor_id", actorID),
		zap.Int("scanned", result.Scanned),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", result.Skipped),
		zap.Int("failures", len(result.Failures)),
	)

	return result, nil
}

// RenderDocument renders the invoice to an archived document, stores the
// object URL on the invoice, and returns a signed short-lived share link
func (s *InvoiceService) RenderDocument(ctx context.Context, invoiceID uuid.UUID) (*DocumentResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	url, err := s.renderer.RenderAndArchive(ctx, invoice)
	if err != nil {
		return nil, err
	}

	invoice.SetDocumentURL(url)
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Sign(invoice.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice document archived",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("document_url", url),
	)

	return &DocumentResponse{
		InvoiceID:   invoice.ID,
		DocumentURL: url,
		ShareToken:  token,
		ExpiresAt:   expiresAt,
	}, nil
}

// ResolveShareToken validates a share token and returns the invoice it
// grants read access to
func (s *InvoiceService) ResolveShareToken(ctx context.Context, token string) (*InvoiceResponse, error) {
	invoiceID, err := s.signer.Verify(token)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_SHARE_TOKEN", "Share link is invalid or expired")
	}
	return s.Get(ctx, invoiceID)
}
