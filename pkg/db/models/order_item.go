package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groovebay/storefront-backend/pkg/types"
)

// OrderItem is a frozen copy of a cart line at order time.
type OrderItem struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID     uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	Name          string               `gorm:"column:name;not null"`
	Image         string               `gorm:"column:image;not null;default:''"`
	Size          *string              `gorm:"column:size"`
	Quantity      int                  `gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal      `gorm:"column:unit_price;type:numeric(12,2);not null"`
	TotalPrice    decimal.Decimal      `gorm:"column:total_price;type:numeric(12,2);not null"`
	Customization *types.Customization `gorm:"column:customization;type:jsonb"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}
