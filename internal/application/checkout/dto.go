package checkout

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/backend/internal/domain/ordering"
	"github.com/shadeworks/backend/internal/domain/shared/valueobject"
)

// ==================== Cart DTOs ====================

// AddCartLineRequest represents a request to add a line to a session cart
type AddCartLineRequest struct {
	ProductID       string                  `json:"product_id" binding:"required,min=1,max=100"`
	ProductName     string                  `json:"product_name" binding:"max=200"`
	Quantity        int                     `json:"quantity" binding:"required,min=1"`
	WidthIn         decimal.Decimal         `json:"width_in"`
	HeightIn        decimal.Decimal         `json:"height_in"`
	RoomLabel       string                  `json:"room_label" binding:"max=100"`
	Configuration   json.RawMessage         `json:"configuration"`
	UnitPrice       decimal.Decimal         `json:"unit_price" binding:"required"`
	CalculatedPrice *decimal.Decimal        `json:"calculated_price"`
	LineTotal       *decimal.Decimal        `json:"line_total"`
	PriceSnapshot   *ordering.PriceSnapshot `json:"price_snapshot"`
}

// UpdateCartLineRequest represents a request to change a cart line's quantity
type UpdateCartLineRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// CartLineResponse represents a cart line in API responses
type CartLineResponse struct {
	ID             uuid.UUID               `json:"id"`
	SessionID      string                  `json:"session_id"`
	ProductID      string                  `json:"product_id"`
	ProductName    string                  `json:"product_name,omitempty"`
	Quantity       int                     `json:"quantity"`
	WidthIn        decimal.Decimal         `json:"width_in"`
	HeightIn       decimal.Decimal         `json:"height_in"`
	RoomLabel      string                  `json:"room_label,omitempty"`
	Configuration  json.RawMessage         `json:"configuration,omitempty"`
	UnitPrice      decimal.Decimal         `json:"unit_price"`
	EffectivePrice decimal.Decimal         `json:"effective_price"`
	LineTotal      decimal.Decimal         `json:"line_total"`
	HasSnapshot    bool                    `json:"has_snapshot"`
	SnapshotAge    *string                 `json:"snapshot_age,omitempty"`
	PriceSnapshot  *ordering.PriceSnapshot `json:"price_snapshot,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

// CartResponse represents a session cart in API responses
type CartResponse struct {
	SessionID string             `json:"session_id"`
	Lines     []CartLineResponse `json:"lines"`
	LineCount int                `json:"line_count"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	Currency  string             `json:"currency"`
}

// ==================== Checkout DTOs ====================

// AddressInput represents a shipping address in requests
type AddressInput struct {
	Street1    string `json:"street1" binding:"required,max=200"`
	Street2    string `json:"street2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required,max=10"`
}

// CustomerInput represents the buyer details in a checkout request
type CustomerInput struct {
	Name    string       `json:"name" binding:"required,min=1,max=200"`
	Email   string       `json:"email" binding:"required,email"`
	Phone   string       `json:"phone" binding:"max=30"`
	Address AddressInput `json:"address" binding:"required"`
}

// CheckoutRequest represents a request to convert a session cart into an order
type CheckoutRequest struct {
	SessionID     string           `json:"session_id" binding:"required,min=1,max=100"`
	Customer      CustomerInput    `json:"customer" binding:"required"`
	PaymentMethod string           `json:"payment_method" binding:"max=50"`
	TaxRate       *decimal.Decimal `json:"tax_rate"`
	Shipping      *decimal.Decimal `json:"shipping"`
	Discount      *decimal.Decimal `json:"discount"`
}

// PriceIssueResponse mirrors one offending line of a failed price validation
type PriceIssueResponse struct {
	LineID        uuid.UUID       `json:"line_id"`
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name,omitempty"`
	Code          string          `json:"code"`
	Reason        string          `json:"reason"`
	CartPrice     decimal.Decimal `json:"cart_price,omitempty"`
	SnapshotPrice decimal.Decimal `json:"snapshot_price,omitempty"`
	CapturedAt    *time.Time      `json:"captured_at,omitempty"`
}

// ToAddress converts the input into the address value object
func (a AddressInput) ToAddress() (valueobject.Address, error) {
	return valueobject.NewAddress(a.Street1, a.City, a.State, a.PostalCode,
		valueobject.WithStreet2(a.Street2))
}

// ToCustomer converts the input into the domain customer
func (c CustomerInput) ToCustomer() (ordering.Customer, error) {
	addr, err := c.Address.ToAddress()
	if err != nil {
		return ordering.Customer{}, err
	}
	return ordering.Customer{
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: addr,
	}, nil
}

// ToCartLineResponse converts a domain cart line to a response DTO
func ToCartLineResponse(line *ordering.CartLine) CartLineResponse {
	resp := CartLineResponse{
		ID:             line.ID,
		SessionID:      line.SessionID,
		ProductID:      line.ProductID,
		ProductName:    line.ProductName,
		Quantity:       line.Quantity,
		WidthIn:        line.WidthIn,
		HeightIn:       line.HeightIn,
		RoomLabel:      line.RoomLabel,
		Configuration:  line.Configuration,
		UnitPrice:      line.UnitPrice,
		EffectivePrice: line.EffectiveUnitPrice(),
		LineTotal:      line.EffectiveLineTotal(),
		HasSnapshot:    line.HasSnapshot(),
		PriceSnapshot:  line.PriceSnapshot,
		CreatedAt:      line.CreatedAt,
	}
	if line.PriceSnapshot != nil {
		age := line.PriceSnapshot.Age(time.Now()).Truncate(time.Second).String()
		resp.SnapshotAge = &age
	}
	return resp
}

// ToCartResponse converts a session's cart lines to a response DTO
func ToCartResponse(sessionID string, lines []ordering.CartLine) CartResponse {
	responses := make([]CartLineResponse, len(lines))
	subtotal := decimal.Zero
	for i := range lines {
		responses[i] = ToCartLineResponse(&lines[i])
		subtotal = subtotal.Add(lines[i].EffectiveLineTotal())
	}
	return CartResponse{
		SessionID: sessionID,
		Lines:     responses,
		LineCount: len(lines),
		Subtotal:  subtotal.Round(2),
		Currency:  string(valueobject.DefaultCurrency),
	}
}

// ToPriceIssueResponses converts domain price issues to response DTOs
func ToPriceIssueResponses(issues []ordering.PriceIssue) []PriceIssueResponse {
	responses := make([]PriceIssueResponse, len(issues))
	for i, issue := range issues {
		responses[i] = PriceIssueResponse{
			LineID:        issue.LineID,
			ProductID:     issue.ProductID,
			ProductName:   issue.ProductName,
			Code:          string(issue.Code),
			Reason:        issue.Reason,
			CartPrice:     issue.CartPrice,
			SnapshotPrice: issue.SnapshotPrice,
			CapturedAt:    issue.CapturedAt,
		}
	}
	return responses
}
