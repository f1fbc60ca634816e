package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groovebay/storefront-backend/pkg/enums"
	"github.com/groovebay/storefront-backend/pkg/types"
)

// Order is an immutable pricing snapshot taken at checkout. Catalog changes
// after creation never alter a placed order.
type Order struct {
	ID                  uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber         string                 `gorm:"column:order_number;not null;uniqueIndex"`
	OwnerID             string                 `gorm:"column:owner_id;not null;index"`
	Items               []OrderItem            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Subtotal            decimal.Decimal        `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount            *types.AppliedDiscount `gorm:"column:discount;type:jsonb"`
	DiscountAmount      decimal.Decimal        `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	ShippingCost        decimal.Decimal        `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	Tax                 decimal.Decimal        `gorm:"column:tax;type:numeric(12,2);not null"`
	TotalAmount         decimal.Decimal        `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status              enums.OrderStatus      `gorm:"column:status;not null;default:'pending'"`
	PaymentStatus       enums.PaymentStatus    `gorm:"column:payment_status;not null;default:'pending'"`
	PaymentMethod       enums.PaymentMethod    `gorm:"column:payment_method;not null"`
	ShippingAddress     types.Address          `gorm:"column:shipping_address;type:jsonb;not null"`
	SpecialInstructions string                 `gorm:"column:special_instructions;not null;default:''"`
	History             types.OrderHistory     `gorm:"column:history;type:jsonb;not null"`
	TrackingNumber      *string                `gorm:"column:tracking_number"`
	EstimatedDelivery   *time.Time             `gorm:"column:estimated_delivery"`
	ActualDelivery      *time.Time             `gorm:"column:actual_delivery"`
	CreatedAt           time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
