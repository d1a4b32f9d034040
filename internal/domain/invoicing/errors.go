package invoicing

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/shadeworks/backend/internal/domain/shared"
)

// NewDuplicateInvoiceError reports that an order already has a non-cancelled
// invoice of the given type
func NewDuplicateInvoiceError(orderID uuid.UUID, invoiceType InvoiceType) *shared.DomainError {
	return shared.NewDomainError("DUPLICATE_INVOICE",
		fmt.Sprintf("Order %s already has a non-cancelled %s invoice", orderID, invoiceType))
}
