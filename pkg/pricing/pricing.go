package pricing

import (
	"fmt"
	"strings"

	"github.com/groovebay/storefront-backend/pkg/enums"
	"github.com/groovebay/storefront-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// Policy constants. Tests pin literal outputs, so changing any of these is a
// pricing change, not a refactor.
var (
	freeShippingThreshold = decimal.NewFromInt(1500)
	flatShippingFee       = decimal.NewFromInt(100)
	taxRate               = decimal.NewFromFloat(0.18)
	hundred               = decimal.NewFromInt(100)
)

// discountTable maps normalized codes to their configured discounts.
var discountTable = map[string]types.AppliedDiscount{
	"groovy20": {
		Code:    "groovy20",
		Kind:    enums.DiscountKindPercentage,
		Percent: decimal.NewFromInt(20),
	},
	"welcome10": {
		Code:    "welcome10",
		Kind:    enums.DiscountKindPercentage,
		Percent: decimal.NewFromInt(10),
	},
}

// Line is the minimal input the engine needs from a cart or order line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote is a full pricing breakdown computed in one pass so every caller
// (cart totals, checkout, order snapshot) agrees on the same numbers.
type Quote struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Shipping       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
}

// ComputeSubtotal sums unit price times quantity across lines.
// Callers must never construct lines with negative prices or quantities
// below one.
func ComputeSubtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal
}

// ApplyDiscount returns the subtotal after the discount, floored at zero.
// A nil discount leaves the subtotal unchanged. Percentages outside [0,100]
// and negative fixed amounts are rejected.
func ApplyDiscount(subtotal decimal.Decimal, discount *types.AppliedDiscount) (decimal.Decimal, error) {
	if discount == nil || discount.IsZero() {
		return subtotal, nil
	}

	switch discount.Kind {
	case enums.DiscountKindPercentage:
		if discount.Percent.IsNegative() || discount.Percent.GreaterThan(hundred) {
			return decimal.Zero, fmt.Errorf("discount %q: percent %s out of range", discount.Code, discount.Percent)
		}
		discounted := subtotal.Mul(hundred.Sub(discount.Percent)).Div(hundred)
		return floorAtZero(discounted), nil
	case enums.DiscountKindFixed:
		if discount.Amount.IsNegative() {
			return decimal.Zero, fmt.Errorf("discount %q: negative fixed amount %s", discount.Code, discount.Amount)
		}
		return floorAtZero(subtotal.Sub(discount.Amount)), nil
	default:
		return decimal.Zero, fmt.Errorf("discount %q: unknown kind %q", discount.Code, discount.Kind)
	}
}

// DiscountAmount returns the value a discount deducts from the subtotal.
func DiscountAmount(subtotal decimal.Decimal, discount *types.AppliedDiscount) (decimal.Decimal, error) {
	discounted, err := ApplyDiscount(subtotal, discount)
	if err != nil {
		return decimal.Zero, err
	}
	return subtotal.Sub(discounted), nil
}

// ComputeShipping is free at or above the threshold, otherwise a flat fee.
// The pre-discount subtotal decides the threshold.
func ComputeShipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		return decimal.Zero
	}
	return flatShippingFee
}

// ComputeTax applies the flat rate and rounds half-up to the nearest whole
// unit. decimal.Round rounds half away from zero, which matches half-up for
// the non-negative subtotals this engine sees.
func ComputeTax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate).Round(0)
}

// ComputeOrderTotal combines the parts of an order's price.
func ComputeOrderTotal(subtotal, shipping, tax, discountAmount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(shipping).Add(tax).Sub(discountAmount)
}

// ResolveDiscountCode matches a code case-insensitively against the table.
// Unrecognized codes return false; the caller decides whether that is an
// error or a no-op.
func ResolveDiscountCode(code string) (types.AppliedDiscount, bool) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	discount, ok := discountTable[normalized]
	return discount, ok
}

// ComputeQuote derives the full breakdown from lines and an optional
// discount. Shipping and tax are computed from the pre-discount subtotal.
func ComputeQuote(lines []Line, discount *types.AppliedDiscount) (Quote, error) {
	subtotal := ComputeSubtotal(lines)
	discountAmount, err := DiscountAmount(subtotal, discount)
	if err != nil {
		return Quote{}, err
	}
	shipping := ComputeShipping(subtotal)
	tax := ComputeTax(subtotal)
	return Quote{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Shipping:       shipping,
		Tax:            tax,
		Total:          ComputeOrderTotal(subtotal, shipping, tax, discountAmount),
	}, nil
}

func floorAtZero(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}
	return value
}
