package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/groovebay/storefront-backend/pkg/db/models"
	"github.com/groovebay/storefront-backend/pkg/types"
)

// CartDTO is the cart shape returned to API consumers. Totals are always the
// store-recomputed values, never caller-supplied.
type CartDTO struct {
	OwnerID             string                 `json:"owner_id"`
	Items               []CartLineDTO          `json:"items"`
	Discount            *types.AppliedDiscount `json:"discount,omitempty"`
	SpecialInstructions string                 `json:"special_instructions"`
	ShippingAddress     *types.Address         `json:"shipping_address,omitempty"`
	TotalItems          int                    `json:"total_items"`
	TotalAmount         decimal.Decimal        `json:"total_amount"`
}

// CartLineDTO is one merged line of the cart.
type CartLineDTO struct {
	ProductID     uuid.UUID            `json:"product_id"`
	Name          string               `json:"name"`
	Image         string               `json:"image"`
	Size          *string              `json:"size,omitempty"`
	Quantity      int                  `json:"quantity"`
	UnitPrice     decimal.Decimal      `json:"unit_price"`
	LineTotal     decimal.Decimal      `json:"line_total"`
	Customization *types.Customization `json:"customization,omitempty"`
}

func toCartDTO(cart *models.Cart) *CartDTO {
	dto := &CartDTO{
		OwnerID:             cart.OwnerID,
		Items:               make([]CartLineDTO, 0, len(cart.Items)),
		Discount:            cart.Discount,
		SpecialInstructions: cart.SpecialInstructions,
		ShippingAddress:     cart.ShippingAddress,
		TotalItems:          cart.TotalItems,
		TotalAmount:         cart.TotalAmount,
	}
	for _, item := range cart.Items {
		dto.Items = append(dto.Items, CartLineDTO{
			ProductID:     item.ProductID,
			Name:          item.Name,
			Image:         item.Image,
			Size:          item.Size,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			LineTotal:     item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			Customization: item.Customization,
		})
	}
	return dto
}

func emptyCartDTO(ownerID string) *CartDTO {
	return &CartDTO{
		OwnerID:     ownerID,
		Items:       []CartLineDTO{},
		TotalAmount: decimal.Zero,
	}
}
