package types

import (
	"database/sql/driver"
	"time"

	"github.com/groovebay/storefront-backend/pkg/enums"
)

// OrderHistoryEntry is one transition in an order's lifecycle.
type OrderHistoryEntry struct {
	Status enums.OrderStatus `json:"status"`
	Note   string            `json:"note,omitempty"`
	At     time.Time         `json:"at"`
}

// OrderHistory is the append-only transition log, stored as jsonb.
type OrderHistory []OrderHistoryEntry

// Value implements driver.Valuer.
func (h OrderHistory) Value() (driver.Value, error) {
	if h == nil {
		return jsonValue(OrderHistory{})
	}
	return jsonValue(h)
}

// Scan implements sql.Scanner.
func (h *OrderHistory) Scan(value interface{}) error {
	if value == nil {
		*h = OrderHistory{}
		return nil
	}
	return jsonScan(h, value)
}
