// Package signing issues and verifies signed tokens for customer-facing
// invoice share links.
package signing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shadeworks/backend/internal/infrastructure/config"
)

const shareTokenType = "invoice_share"

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid share token")
	ErrExpiredToken     = errors.New("share token has expired")
	ErrInvalidTokenType = errors.New("invalid share token type")
	ErrInvalidClaims    = errors.New("invalid share token claims")
	ErrTokenNotYetValid = errors.New("share token is not yet valid")
	ErrMissingInvoiceID = errors.New("missing invoice_id in claims")
)

// ShareClaims are the custom JWT claims carried by an invoice share token.
// The token grants read access to exactly one invoice document.
type ShareClaims struct {
	jwt.RegisteredClaims
	InvoiceID string `json:"invoice_id"`
	TokenType string `json:"token_type"`
}

// ShareTokenService signs and verifies invoice share tokens using HMAC-SHA256.
type ShareTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewShareTokenService creates a share token service from configuration.
func NewShareTokenService(invoicing config.InvoicingConfig, signing config.SigningConfig) *ShareTokenService {
	ttl := invoicing.ShareTokenTTL
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &ShareTokenService{
		secret: []byte(invoicing.ShareSecret),
		ttl:    ttl,
		issuer: signing.Issuer,
	}
}

// Sign issues a share token for the given invoice. The token expires after
// the configured TTL.
func (s *ShareTokenService) Sign(invoiceID uuid.UUID) (string, time.Time, error) {
	if invoiceID == uuid.Nil {
		return "", time.Time{}, ErrMissingInvoiceID
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := &ShareClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   invoiceID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		InvoiceID: invoiceID.String(),
		TokenType: shareTokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify validates a share token and returns the invoice it grants access to.
func (s *ShareTokenService) Verify(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ShareClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return uuid.Nil, ErrTokenNotYetValid
		}
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*ShareClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidClaims
	}

	if claims.TokenType != shareTokenType {
		return uuid.Nil, ErrInvalidTokenType
	}
	if claims.InvoiceID == "" {
		return uuid.Nil, ErrMissingInvoiceID
	}

	invoiceID, err := uuid.Parse(claims.InvoiceID)
	if err != nil {
		return uuid.Nil, ErrInvalidClaims
	}

	return invoiceID, nil
}
