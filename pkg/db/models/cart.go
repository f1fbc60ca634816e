package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groovebay/storefront-backend/pkg/types"
)

// Cart is the single per-owner working cart. TotalItems and TotalAmount are
// derived from Items and Discount on every save; callers never set them.
type Cart struct {
	ID                  uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID             string                 `gorm:"column:owner_id;not null;uniqueIndex"`
	Items               []CartItem             `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	Discount            *types.AppliedDiscount `gorm:"column:discount;type:jsonb"`
	SpecialInstructions string                 `gorm:"column:special_instructions;not null;default:''"`
	ShippingAddress     *types.Address         `gorm:"column:shipping_address;type:jsonb"`
	TotalItems          int                    `gorm:"column:total_items;not null;default:0"`
	TotalAmount         decimal.Decimal        `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`
	CreatedAt           time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
