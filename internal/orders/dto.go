package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groovebay/storefront-backend/pkg/db/models"
	"github.com/groovebay/storefront-backend/pkg/enums"
	"github.com/groovebay/storefront-backend/pkg/types"
)

// OrderDTO is the order shape returned to API consumers.
type OrderDTO struct {
	ID                  uuid.UUID              `json:"id"`
	OrderNumber         string                 `json:"order_number"`
	OwnerID             string                 `json:"owner_id"`
	Items               []OrderItemDTO         `json:"items"`
	Subtotal            decimal.Decimal        `json:"subtotal"`
	Discount            *types.AppliedDiscount `json:"discount,omitempty"`
	DiscountAmount      decimal.Decimal        `json:"discount_amount"`
	ShippingCost        decimal.Decimal        `json:"shipping_cost"`
	Tax                 decimal.Decimal        `json:"tax"`
	TotalAmount         decimal.Decimal        `json:"total_amount"`
	Status              enums.OrderStatus      `json:"status"`
	PaymentStatus       enums.PaymentStatus    `json:"payment_status"`
	PaymentMethod       enums.PaymentMethod    `json:"payment_method"`
	ShippingAddress     types.Address          `json:"shipping_address"`
	SpecialInstructions string                 `json:"special_instructions,omitempty"`
	History             types.OrderHistory     `json:"history"`
	TrackingNumber      *string                `json:"tracking_number,omitempty"`
	EstimatedDelivery   *time.Time             `json:"estimated_delivery,omitempty"`
	ActualDelivery      *time.Time             `json:"actual_delivery,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
}

// OrderItemDTO is one frozen line of an order.
type OrderItemDTO struct {
	ProductID     uuid.UUID            `json:"product_id"`
	Name          string               `json:"name"`
	Image         string               `json:"image"`
	Size          *string              `json:"size,omitempty"`
	Quantity      int                  `json:"quantity"`
	UnitPrice     decimal.Decimal      `json:"unit_price"`
	TotalPrice    decimal.Decimal      `json:"total_price"`
	Customization *types.Customization `json:"customization,omitempty"`
}

// OrderListResult wraps one page of orders plus the next page cursor.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor *string    `json:"next_cursor,omitempty"`
}

func toOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:                  order.ID,
		OrderNumber:         order.OrderNumber,
		OwnerID:             order.OwnerID,
		Items:               make([]OrderItemDTO, 0, len(order.Items)),
		Subtotal:            order.Subtotal,
		Discount:            order.Discount,
		DiscountAmount:      order.DiscountAmount,
		ShippingCost:        order.ShippingCost,
		Tax:                 order.Tax,
		TotalAmount:         order.TotalAmount,
		Status:              order.Status,
		PaymentStatus:       order.PaymentStatus,
		PaymentMethod:       order.PaymentMethod,
		ShippingAddress:     order.ShippingAddress,
		SpecialInstructions: order.SpecialInstructions,
		History:             order.History,
		TrackingNumber:      order.TrackingNumber,
		EstimatedDelivery:   order.EstimatedDelivery,
		ActualDelivery:      order.ActualDelivery,
		CreatedAt:           order.CreatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Image:         item.Image,
			Size:          item.Size,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    item.TotalPrice,
			Customization: item.Customization,
		})
	}
	return dto
}
