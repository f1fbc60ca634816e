package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groovebay/storefront-backend/pkg/types"
)

// CartItem is one merged line. At most one line exists per (cart, product,
// normalized size); the cart service enforces the merge before saving.
type CartItem struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID        uuid.UUID            `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID     uuid.UUID            `gorm:"column:product_id;type:uuid;not null"`
	Size          *string              `gorm:"column:size"`
	Quantity      int                  `gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal      `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Name          string               `gorm:"column:name;not null"`
	Image         string               `gorm:"column:image;not null;default:''"`
	Customization *types.Customization `gorm:"column:customization;type:jsonb"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
