package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shadeworks/backend/internal/domain/ledger"
	"github.com/shadeworks/backend/internal/domain/ordering"
	"github.com/shadeworks/backend/internal/domain/shared"
)

// LedgerService derives accounting entries from committed orders. All money
// figures come from the order's frozen pricing and snapshots; the service
// never recomputes a customer price.
type LedgerService struct {
	ledgerRepo ledger.LedgerRepository
	orderRepo  ordering.OrderRepository
	logger     *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(ledgerRepo ledger.LedgerRepository, orderRepo ordering.OrderRepository, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		ledgerRepo: ledgerRepo,
		orderRepo:  orderRepo,
		logger:     logger,
	}
}

// PostOrderEntries appends the order-time accounting batch: the customer
// payment, collected tax and shipping when present, and the manufacturer
// payable with margin figures in its metadata. The batch is keyed by an
// idempotency key, so a retry returns the originally posted entries with
// AlreadyPosted set instead of double-posting.
func (s *LedgerService) PostOrderEntries(ctx context.Context, orderID uuid.UUID) (*PostEntriesResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	entries, err := s.deriveOrderEntries(order)
	if err != nil {
		return nil, err
	}

	postingKey := ledger.OrderPostingKey(order.ID)
	events := []shared.DomainEvent{
		ledger.NewLedgerEntriesPostedEvent(order.ID, order.OrderNumber, postingKey, entries),
	}

	if err := s.ledgerRepo.AppendPosting(ctx, postingKey, entries, events); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			existing, findErr := s.ledgerRepo.FindByOrderID(ctx, order.ID)
			if findErr != nil {
				return nil, findErr
			}
			return &PostEntriesResponse{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				Entries:       ToEntryResponses(existing),
				AlreadyPosted: true,
			}, nil
		}
		return nil, err
	}

	s.logger.Info("order ledger entries posted",
		zap.String("order_number", order.OrderNumber),
		zap.Int("entries", len(entries)),
		zap.String("total", order.Pricing.Total.StringFixed(2)),
	)

	responses := make([]EntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = ToEntryResponse(entry)
	}
	return &PostEntriesResponse{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Entries:     responses,
	}, nil
}

// deriveOrderEntries builds the order-time batch from the frozen pricing
func (s *LedgerService) deriveOrderEntries(order *ordering.Order) ([]*ledger.LedgerEntry, error) {
	manufacturerCost := order.ManufacturerCost()
	margin := order.Margin()
	marginPercent := order.MarginPercent()

	entries := make([]*ledger.LedgerEntry, 0, 4)

	payment, err := ledger.NewEntry(ledger.EntryTypeCustomerPaymentReceived, order.ID, order.OrderNumber,
		order.Pricing.Total, fmt.Sprintf("Customer payment for order %s", order.OrderNumber),
		ledger.Metadata{ledger.MetaKeyTransactionID: order.Payment.TransactionID})
	if err != nil {
		return nil, err
	}
	entries = append(entries, payment)

	if order.Pricing.Tax.IsPositive() {
		tax, err := ledger.NewEntry(ledger.EntryTypeSalesTaxCollected, order.ID, order.OrderNumber,
			order.Pricing.Tax, fmt.Sprintf("Sales tax collected for order %s", order.OrderNumber), nil)
		if err != nil {
			return nil, err
		}
		entries = append(entries, tax)
	}

	if order.Pricing.Shipping.IsPositive() {
		shipping, err := ledger.NewEntry(ledger.EntryTypeShippingCharged, order.ID, order.OrderNumber,
			order.Pricing.Shipping, fmt.Sprintf("Shipping charged for order %s", order.OrderNumber), nil)
		if err != nil {
			return nil, err
		}
		entries = append(entries, shipping)
	}

	payable, err := ledger.NewEntry(ledger.EntryTypeManufacturerPayable, order.ID, order.OrderNumber,
		manufacturerCost, fmt.Sprintf("Manufacturer payable for order %s", order.OrderNumber),
		ledger.Metadata{
			ledger.MetaKeyMargin:           margin.StringFixed(2),
			ledger.MetaKeyMarginPercent:    marginPercent.StringFixed(2),
			ledger.MetaKeyManufacturerCost: manufacturerCost.StringFixed(2),
		})
	if err != nil {
		return nil, err
	}
	entries = append(entries, payable)

	return entries, nil
}

// RecordShippedProfit converts the manufacturer payable into a realized paid
// cost and earned margin when the order ships. Profit is total minus
// collected tax minus manufacturer cost. A manufacturer_paid entry already on
// the books makes this a no-op reporting AlreadyRecorded.
func (s *LedgerService) RecordShippedProfit(ctx context.Context, orderID uuid.UUID) (*ShipProfitResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	alreadyPaid, err := s.ledgerRepo.ExistsByOrderAndType(ctx, order.ID, ledger.EntryTypeManufacturerPaid)
	if err != nil {
		return nil, err
	}
	if alreadyPaid {
		return &ShipProfitResponse{
			OrderID:         order.ID,
			OrderNumber:     order.OrderNumber,
			AlreadyRecorded: true,
		}, nil
	}

	manufacturerCost := order.ManufacturerCost()
	salesTax := order.Pricing.Tax
	profit := order.Pricing.Total.Sub(salesTax).Sub(manufacturerCost).Round(2)

	paid, err := ledger.NewEntry(ledger.EntryTypeManufacturerPaid, order.ID, order.OrderNumber,
		manufacturerCost, fmt.Sprintf("Manufacturer paid at ship time for order %s", order.OrderNumber),
		ledger.Metadata{ledger.MetaKeyManufacturerCost: manufacturerCost.StringFixed(2)})
	if err != nil {
		return nil, err
	}

	earned, err := ledger.NewEntry(ledger.EntryTypeMarginEarned, order.ID, order.OrderNumber,
		profit, fmt.Sprintf("Margin earned on order %s", order.OrderNumber),
		ledger.Metadata{ledger.MetaKeyProfit: profit.StringFixed(2)})
	if err != nil {
		return nil, err
	}

	entries := []*ledger.LedgerEntry{paid, earned}
	postingKey := ledger.ShipProfitPostingKey(order.ID)
	events := []shared.DomainEvent{
		ledger.NewShippedProfitRecordedEvent(order.ID, order.OrderNumber, profit, manufacturerCost, salesTax),
	}

	if err := s.ledgerRepo.AppendPosting(ctx, postingKey, entries, events); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// A concurrent call won the race; report idempotent success.
			return &ShipProfitResponse{
				OrderID:         order.ID,
				OrderNumber:     order.OrderNumber,
				AlreadyRecorded: true,
			}, nil
		}
		return nil, err
	}

	s.logger.Info("shipped profit recorded",
		zap.String("order_number", order.OrderNumber),
		zap.String("profit", profit.StringFixed(2)),
		zap.String("manufacturer_cost", manufacturerCost.StringFixed(2)),
	)

	return &ShipProfitResponse{
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		Profit:           profit,
		ManufacturerCost: manufacturerCost,
		SalesTax:         salesTax,
	}, nil
}

// EntriesForOrder returns an order's ledger entries, oldest first
func (s *LedgerService) EntriesForOrder(ctx context.Context, orderID uuid.UUID) ([]EntryResponse, error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	entries, err := s.ledgerRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToEntryResponses(entries), nil
}

// Summary groups all entries by type within the optional date range,
// returning count and signed total per type plus the net across types
func (s *LedgerService) Summary(ctx context.Context, filter SummaryFilter) (*SummaryResponse, error) {
	summaries, err := s.ledgerRepo.SummarizeByType(ctx, filter.FromDate, filter.ToDate)
	if err != nil {
		return nil, err
	}

	byType := make([]TypeSummaryResponse, len(summaries))
	net := decimal.Zero
	for i, summary := range summaries {
		byType[i] = TypeSummaryResponse{
			Type:  summary.Type.String(),
			Count: summary.Count,
			Total: summary.Total,
		}
		net = net.Add(summary.Total)
	}

	return &SummaryResponse{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
		ByType:   byType,
		NetTotal: net.Round(2),
	}, nil
}
