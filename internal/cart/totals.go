package cart

import (
	"strings"

	"github.com/google/uuid"

	"github.com/groovebay/storefront-backend/pkg/db/models"
	"github.com/groovebay/storefront-backend/pkg/pricing"
)

// recomputeTotals derives TotalItems and TotalAmount from the cart's items
// and discount. The stored discount amount is refreshed at the same time so
// it always reflects the current subtotal.
func recomputeTotals(cart *models.Cart) error {
	totalItems := 0
	lines := make([]pricing.Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		totalItems += item.Quantity
		lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}

	subtotal := pricing.ComputeSubtotal(lines)
	discounted, err := pricing.ApplyDiscount(subtotal, cart.Discount)
	if err != nil {
		return err
	}
	if cart.Discount != nil {
		cart.Discount.Amount = subtotal.Sub(discounted)
	}

	cart.TotalItems = totalItems
	cart.TotalAmount = discounted
	return nil
}

// normalizeSize collapses "no size" spellings into one equivalence class.
// nil, "" and whitespace-only values all normalize to the empty string.
func normalizeSize(size *string) string {
	if size == nil {
		return ""
	}
	return strings.TrimSpace(*size)
}

// sizeForStorage returns nil for the "no size" class so the database holds a
// single canonical representation.
func sizeForStorage(size *string) *string {
	normalized := normalizeSize(size)
	if normalized == "" {
		return nil
	}
	return &normalized
}

type lineKey struct {
	productID uuid.UUID
	size      string
}

func keyFor(productID uuid.UUID, size *string) lineKey {
	return lineKey{productID: productID, size: normalizeSize(size)}
}
