package types

import (
	"database/sql/driver"

	"github.com/groovebay/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// AppliedDiscount records the discount attached to a cart or order.
// Percent is the configured rate for percentage discounts; Amount is the
// value deducted from the subtotal at the time of pricing.
type AppliedDiscount struct {
	Code    string             `json:"code"`
	Kind    enums.DiscountKind `json:"kind"`
	Percent decimal.Decimal    `json:"percent"`
	Amount  decimal.Decimal    `json:"amount"`
}

func (d AppliedDiscount) IsZero() bool {
	return d.Code == ""
}

// Value implements driver.Valuer.
func (d AppliedDiscount) Value() (driver.Value, error) {
	return jsonValue(d)
}

// Scan implements sql.Scanner.
func (d *AppliedDiscount) Scan(value interface{}) error {
	if value == nil {
		*d = AppliedDiscount{}
		return nil
	}
	return jsonScan(d, value)
}
