package ordering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shadeworks/backend/internal/domain/ordering"
	"github.com/shadeworks/backend/internal/domain/shared"
)

// StatusService owns order status transitions and order queries. A
// transition is never persisted without its history entry: the repository
// applies both, plus the outbox records, in one transaction.
type StatusService struct {
	orderRepo   ordering.OrderRepository
	historyRepo ordering.OrderStatusHistoryRepository
	logger      *zap.Logger
}

// NewStatusService creates a new StatusService
func NewStatusService(orderRepo ordering.OrderRepository, historyRepo ordering.OrderStatusHistoryRepository, logger *zap.Logger) *StatusService {
	return &StatusService{
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// Transition moves an order to a new status. The state machine on the
// aggregate validates the edge; illegal edges fail with INVALID_TRANSITION
// and leave the order untouched.
func (s *StatusService) Transition(ctx context.Context, orderID uuid.UUID, newStatus ordering.OrderStatus, actorID, reason string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := order.TransitionTo(newStatus, actorID, reason); err != nil {
		return nil, err
	}

	entry, err := ordering.NewStatusHistoryEntry(order, from, newStatus, actorID, reason)
	if err != nil {
		return nil, err
	}

	events := order.GetDomainEvents()
	if err := s.orderRepo.SaveTransition(ctx, order, entry, events); err != nil {
		return nil, err
	}
	order.ClearDomainEvents()

	s.logger.Info("order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", from.String()),
		zap.String("to", newStatus.String()),
		zap.String("changed_by", actorID),
	)

	response := ToOrderResponse(order)
	return &response, nil
}

// SimulateFakePayment marks the order as paid without a payment gateway: it
// records a fake transaction reference and runs the order_received
// transition, which flips the payment status to completed.
func (s *StatusService) SimulateFakePayment(ctx context.Context, orderID uuid.UUID, actorID string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	order.RecordPaymentTransaction("fake", fmt.Sprintf("FAKE-%d", time.Now().Unix()))
	if err := order.TransitionTo(ordering.OrderStatusOrderReceived, actorID, "Simulated payment"); err != nil {
		return nil, err
	}

	entry, err := ordering.NewStatusHistoryEntry(order, from, ordering.OrderStatusOrderReceived, actorID, "Simulated payment")
	if err != nil {
		return nil, err
	}

	events := order.GetDomainEvents()
	if err := s.orderRepo.SaveTransition(ctx, order, entry, events); err != nil {
		return nil, err
	}
	order.ClearDomainEvents()

	s.logger.Info("fake payment recorded",
		zap.String("order_number", order.OrderNumber),
		zap.String("transaction_id", order.Payment.TransactionID),
	)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *StatusService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetOrderWithHistory retrieves an order together with its full transition
// history, oldest entry first
func (s *StatusService) GetOrderWithHistory(ctx context.Context, orderID uuid.UUID) (*OrderWithHistoryResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	history, err := s.historyRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &OrderWithHistoryResponse{
		Order:   ToOrderResponse(order),
		History: ToHistoryEntryResponses(history),
	}, nil
}

// List retrieves orders with filtering and pagination
func (s *StatusService) List(ctx context.Context, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.Status != nil {
		status := ordering.OrderStatus(*filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", *filter.Status))
		}
		domainFilter.Filters["status"] = status.String()
	}
	if filter.CustomerEmail != nil {
		domainFilter.Filters["customer_email"] = *filter.CustomerEmail
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderListItemResponses(orders), total, nil
}
