package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	orderingapp "github.com/shadeworks/backend/internal/application/ordering"
	"github.com/shadeworks/backend/internal/domain/ordering"
	"github.com/shadeworks/backend/internal/domain/shared"
)

// Rules are the checkout pricing policies. Values come from config; the
// defaults match the platform's single tax jurisdiction.
type Rules struct {
	TaxRate        decimal.Decimal
	SnapshotMaxAge time.Duration
	PriceTolerance decimal.Decimal
}

// DefaultRules returns the built-in checkout policies
func DefaultRules() Rules {
	return Rules{
		TaxRate:        decimal.NewFromFloat(0.0725),
		SnapshotMaxAge: 24 * time.Hour,
		PriceTolerance: decimal.NewFromFloat(0.01),
	}
}

// CheckoutService converts session carts into orders. Snapshot validation is
// fail-closed: every line is inspected and any issue aborts the checkout with
// the full issue list.
type CheckoutService struct {
	cartRepo  ordering.CartRepository
	orderRepo ordering.OrderRepository
	rules     Rules
	logger    *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(cartRepo ordering.CartRepository, orderRepo ordering.OrderRepository, rules Rules, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		rules:     rules,
		logger:    logger,
	}
}

// AddLine adds a line to a session cart
func (s *CheckoutService) AddLine(ctx context.Context, sessionID string, req AddCartLineRequest) (*CartLineResponse, error) {
	line, err := ordering.NewCartLine(sessionID, req.ProductID, req.ProductName, req.Quantity, req.WidthIn, req.HeightIn, req.UnitPrice)
	if err != nil {
		return nil, err
	}

	line.RoomLabel = req.RoomLabel
	line.Configuration = req.Configuration
	line.CalculatedPrice = req.CalculatedPrice
	line.LineTotal = req.LineTotal
	if req.PriceSnapshot != nil {
		line.AttachSnapshot(*req.PriceSnapshot)
	}

	if err := s.cartRepo.SaveLine(ctx, line); err != nil {
		return nil, err
	}

	response := ToCartLineResponse(line)
	return &response, nil
}

// UpdateLine changes a cart line's quantity
func (s *CheckoutService) UpdateLine(ctx context.Context, sessionID string, lineID uuid.UUID, req UpdateCartLineRequest) (*CartLineResponse, error) {
	line, err := s.cartRepo.FindLineByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line.SessionID != sessionID {
		return nil, shared.ErrNotFound
	}

	if err := line.UpdateQuantity(req.Quantity); err != nil {
		return nil, err
	}

	if err := s.cartRepo.SaveLine(ctx, line); err != nil {
		return nil, err
	}

	response := ToCartLineResponse(line)
	return &response, nil
}

// RemoveLine removes a single line from a session cart
func (s *CheckoutService) RemoveLine(ctx context.Context, sessionID string, lineID uuid.UUID) error {
	line, err := s.cartRepo.FindLineByID(ctx, lineID)
	if err != nil {
		return err
	}
	if line.SessionID != sessionID {
		return shared.ErrNotFound
	}
	return s.cartRepo.DeleteLine(ctx, lineID)
}

// GetCart retrieves a session's cart with resolved prices
func (s *CheckoutService) GetCart(ctx context.Context, sessionID string) (*CartResponse, error) {
	lines, err := s.cartRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	response := ToCartResponse(sessionID, lines)
	return &response, nil
}

// ClearCart removes every line from a session cart
func (s *CheckoutService) ClearCart(ctx context.Context, sessionID string) error {
	return s.cartRepo.ClearSession(ctx, sessionID)
}

// CreateOrderFromCart converts a session's cart into an order. The order,
// its creation history entry, the cart deletion and the outbox records are
// applied in one transaction; failure anywhere rolls back everything.
func (s *CheckoutService) CreateOrderFromCart(ctx context.Context, req CheckoutRequest, actorID string) (*orderingapp.OrderResponse, error) {
	lines, err := s.cartRepo.FindBySession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", fmt.Sprintf("No cart lines exist for session %s", req.SessionID))
	}

	customer, err := req.Customer.ToCustomer()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}

	for i := range lines {
		if lines[i].EffectiveLineTotal().LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_PRICE",
				fmt.Sprintf("Cart line %s (%s) resolves to a non-positive price", lines[i].ID, lines[i].ProductID))
		}
	}

	if err := s.validateSnapshots(lines); err != nil {
		return nil, err
	}

	now := time.Now()
	items := make([]ordering.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for i := range lines {
		snapshot := s.frozenSnapshot(&lines[i], now)
		item, err := ordering.NewOrderItem(uuid.Nil, lines[i], snapshot)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
		subtotal = subtotal.Add(item.LineTotal)
	}

	taxRate := s.rules.TaxRate
	if req.TaxRate != nil {
		if req.TaxRate.IsNegative() || req.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be in [0, 1)")
		}
		taxRate = *req.TaxRate
	}
	shipping := decimal.Zero
	if req.Shipping != nil {
		if req.Shipping.IsNegative() {
			return nil, shared.NewDomainError("INVALID_SHIPPING", "Shipping cannot be negative")
		}
		shipping = *req.Shipping
	}
	discount := decimal.Zero
	if req.Discount != nil {
		if req.Discount.IsNegative() {
			return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
		}
		discount = *req.Discount
	}

	tax := subtotal.Mul(taxRate).Round(2)
	pricing := ordering.NewPricing(subtotal, tax, taxRate, shipping, discount)

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order, err := ordering.NewOrder(orderNumber, customer, items, pricing, req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	order.FillDerivedPricing(order.ManufacturerCost(), order.Margin(), order.MarginPercent())

	entry := ordering.NewCreationHistoryEntry(order, actorID)
	events := order.GetDomainEvents()

	if err := s.orderRepo.CreateFromCheckout(ctx, order, entry, req.SessionID, events); err != nil {
		return nil, err
	}
	order.ClearDomainEvents()

	s.logger.Info("checkout completed",
		zap.String("order_number", order.OrderNumber),
		zap.String("session_id", req.SessionID),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.Pricing.Total.StringFixed(2)),
	)

	response := orderingapp.ToOrderResponse(order)
	return &response, nil
}

// validateSnapshots inspects every line carrying a snapshot. One stale or
// drifted line is enough to abort, but all lines are checked so the caller
// can show the customer the complete list of what changed.
func (s *CheckoutService) validateSnapshots(lines []ordering.CartLine) error {
	validationErr := &ordering.PriceValidationError{}
	now := time.Now()

	for i := range lines {
		line := lines[i]
		if !line.HasSnapshot() {
			continue
		}
		snapshot := line.PriceSnapshot

		if snapshot.IsExpired(now, s.rules.SnapshotMaxAge) {
			validationErr.Add(ordering.NewExpiredSnapshotIssue(line))
		}

		cartPrice := line.EffectiveUnitPrice()
		if cartPrice.Sub(snapshot.CustomerPrice.UnitPrice).Abs().GreaterThan(s.rules.PriceTolerance) {
			validationErr.Add(ordering.NewPriceMismatchIssue(line, cartPrice, snapshot.CustomerPrice.UnitPrice))
		}
	}

	if validationErr.HasIssues() {
		s.logger.Warn("checkout aborted by price validation",
			zap.Int("issues", len(validationErr.Issues)),
			zap.String("first_reason", validationErr.Issues[0].Reason),
		)
		return validationErr
	}
	return nil
}

// frozenSnapshot prefers the cart's captured snapshot and synthesizes a
// legacy one only for lines that predate snapshotting
func (s *CheckoutService) frozenSnapshot(line *ordering.CartLine, now time.Time) ordering.PriceSnapshot {
	if line.PriceSnapshot != nil {
		return *line.PriceSnapshot
	}
	return ordering.SynthesizeLegacySnapshot(line.EffectiveUnitPrice(), line.Quantity, now)
}
