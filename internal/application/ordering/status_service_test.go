package ordering

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shadeworks/backend/internal/domain/ordering"
	"github.com/shadeworks/backend/internal/domain/shared"
	"github.com/shadeworks/backend/internal/domain/shared/valueobject"
)

// MockOrderRepository is a mock implementation of ordering.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*ordering.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ordering.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByStatus(ctx context.Context, status ordering.OrderStatus, filter shared.Filter) ([]ordering.Order, error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *ordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLockAndEvents(ctx context.Context, order *ordering.Order, events []shared.DomainEvent) error {
	args := m.Called(ctx, order, events)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveTransition(ctx context.Context, order *ordering.Order, entry *ordering.OrderStatusHistoryEntry, events []shared.DomainEvent) error {
	args := m.Called(ctx, order, entry, events)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateFromCheckout(ctx context.Context, order *ordering.Order, entry *ordering.OrderStatusHistoryEntry, sessionID string, events []shared.DomainEvent) error {
	args := m.Called(ctx, order, entry, sessionID, events)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, status ordering.OrderStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	args := m.Called(ctx, orderNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockHistoryRepository is a mock implementation of ordering.OrderStatusHistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *ordering.OrderStatusHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]ordering.OrderStatusHistoryEntry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.OrderStatusHistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) CountByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

// Test helpers

func testOrder(t *testing.T) *ordering.Order {
	t.Helper()
	addr, err := valueobject.NewAddress("742 Evergreen Ter", "Springfield", "IL", "62704")
	require.NoError(t, err)

	line, err := ordering.NewCartLine("sess-1", "roller-blackout", "Blackout Roller Shade", 2,
		decimal.NewFromInt(36), decimal.NewFromInt(48), decimal.NewFromFloat(89.79))
	require.NoError(t, err)

	snapshot := ordering.SynthesizeLegacySnapshot(decimal.NewFromFloat(89.79), 2, time.Now())
	item, err := ordering.NewOrderItem(uuid.New(), *line, snapshot)
	require.NoError(t, err)

	subtotal := item.LineTotal
	tax := subtotal.Mul(decimal.NewFromFloat(0.0725)).Round(2)
	pricing := ordering.NewPricing(subtotal, tax, decimal.NewFromFloat(0.0725), decimal.Zero, decimal.Zero)

	order, err := ordering.NewOrder("ORD-2026-00001", ordering.Customer{
		Name:    "Maria Santos",
		Email:   "maria@example.com",
		Address: addr,
	}, []ordering.OrderItem{*item}, pricing, "card")
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func newStatusService(orderRepo *MockOrderRepository, historyRepo *MockHistoryRepository) *StatusService {
	return NewStatusService(orderRepo, historyRepo, zap.NewNop())
}

// ============================================
// Transition Tests
// ============================================

func TestStatusService_Transition(t *testing.T) {
	t.Run("success applies side effects and saves one history entry", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		historyRepo := new(MockHistoryRepository)
		service := newStatusService(orderRepo, historyRepo)

		order := testOrder(t)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		var savedEntry *ordering.OrderStatusHistoryEntry
		orderRepo.On("SaveTransition", mock.Anything, order, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				savedEntry = args.Get(2).(*ordering.OrderStatusHistoryEntry)
			}).
			Return(nil)

		resp, err := service.Transition(context.Background(), order.ID, ordering.OrderStatusOrderReceived, "admin", "payment confirmed")
		require.NoError(t, err)

		assert.Equal(t, "order_received", resp.Status)
		assert.Equal(t, "completed", resp.Payment.Status)
		require.NotNil(t, savedEntry)
		require.NotNil(t, savedEntry.FromStatus)
		assert.Equal(t, ordering.OrderStatusOrderPlaced, *savedEntry.FromStatus)
		assert.Equal(t, ordering.OrderStatusOrderReceived, savedEntry.ToStatus)
		assert.Equal(t, "admin", savedEntry.ChangedBy)
		orderRepo.AssertExpectations(t)
	})

	t.Run("illegal transition fails without saving", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		historyRepo := new(MockHistoryRepository)
		service := newStatusService(orderRepo, historyRepo)

		order := testOrder(t)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := service.Transition(context.Background(), order.ID, ordering.OrderStatusShipped, "admin", "")
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
		orderRepo.AssertNotCalled(t, "SaveTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("order not found", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		historyRepo := new(MockHistoryRepository)
		service := newStatusService(orderRepo, historyRepo)

		orderID := uuid.New()
		orderRepo.On("FindByID", mock.Anything, orderID).Return(nil, shared.ErrNotFound)

		_, err := service.Transition(context.Background(), orderID, ordering.OrderStatusOrderReceived, "admin", "")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("concurrency conflict surfaces to the caller", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		historyRepo := new(MockHistoryRepository)
		service := newStatusService(orderRepo, historyRepo)

		order := testOrder(t)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		orderRepo.On("SaveTransition", mock.Anything, order, mock.Anything, mock.Anything).
			Return(shared.ErrConcurrencyConflict)

		_, err := service.Transition(context.Background(), order.ID, ordering.OrderStatusOrderReceived, "admin", "")
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestStatusService_SimulateFakePayment(t *testing.T) {
	t.Run("records fake transaction and completes payment", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		historyRepo := new(MockHistoryRepository)
		service := newStatusService(orderRepo, historyRepo)

		order := testOrder(t)
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		orderRepo.On("SaveTransition", mock.Anything, order, mock.Anything, mock.Anything).Return(nil)

		resp, err := service.SimulateFakePayment(context.Background(), order.ID, "customer")
		require.NoError(t, err)

		assert.Equal(t, "order_received", resp.Status)
		assert.Equal(t, "completed", resp.Payment.Status)
		assert.Equal(t, "fake", resp.Payment.Method)
		assert.Contains(t, resp.Payment.TransactionID, "FAKE-")
		assert.NotNil(t, resp.Payment.PaidAt)
	})

	t.Run("fails when order already received", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		historyRepo := new(MockHistoryRepository)
		service := newStatusService(orderRepo, historyRepo)

		order := testOrder(t)
		require.NoError(t, order.TransitionTo(ordering.OrderStatusOrderReceived, "test", ""))
		order.ClearDomainEvents()
		orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := service.SimulateFakePayment(context.Background(), order.ID, "customer")
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
	})
}

func TestStatusService_GetOrderWithHistory(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	historyRepo := new(MockHistoryRepository)
	service := newStatusService(orderRepo, historyRepo)

	order := testOrder(t)
	creation := ordering.NewCreationHistoryEntry(order, "system")
	entry, err := ordering.NewStatusHistoryEntry(order, ordering.OrderStatusOrderPlaced, ordering.OrderStatusOrderReceived, "admin", "")
	require.NoError(t, err)

	orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	historyRepo.On("FindByOrderID", mock.Anything, order.ID).
		Return([]ordering.OrderStatusHistoryEntry{*creation, *entry}, nil)

	resp, err := service.GetOrderWithHistory(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, order.OrderNumber, resp.Order.OrderNumber)
	require.Len(t, resp.History, 2)
	assert.Nil(t, resp.History[0].FromStatus, "creation entry has no from status")
	assert.Equal(t, "order_placed", resp.History[0].ToStatus)
	assert.Equal(t, "order_received", resp.History[1].ToStatus)
}

func TestStatusService_List(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	historyRepo := new(MockHistoryRepository)
	service := newStatusService(orderRepo, historyRepo)

	order := testOrder(t)
	status := "order_placed"
	orderRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["status"] == "order_placed" && f.Page == 1 && f.PageSize == 20
	})).Return([]ordering.Order{*order}, nil)
	orderRepo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

	items, total, err := service.List(context.Background(), OrderListFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, order.OrderNumber, items[0].OrderNumber)

	t.Run("rejects unknown status", func(t *testing.T) {
		bad := "warehouse"
		_, _, err := service.List(context.Background(), OrderListFilter{Status: &bad})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATUS", domainErr.Code)
	})
}
