package cart

import (
	"github.com/google/uuid"

	cartsvc "github.com/groovebay/storefront-backend/internal/cart"
	pkgerrors "github.com/groovebay/storefront-backend/pkg/errors"
	"github.com/groovebay/storefront-backend/pkg/types"
)

type addItemRequest struct {
	ProductID     string               `json:"product_id" validate:"required,uuid"`
	Size          *string              `json:"size"`
	Quantity      int                  `json:"quantity" validate:"required,min=1"`
	Customization *types.Customization `json:"customization"`
}

func (req addItemRequest) toInput() (cartsvc.AddItemInput, error) {
	id, err := uuid.Parse(req.ProductID)
	if err != nil {
		return cartsvc.AddItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return cartsvc.AddItemInput{
		ProductID:     id,
		Size:          req.Size,
		Quantity:      req.Quantity,
		Customization: req.Customization,
	}, nil
}

type replaceItemRequest struct {
	ProductID     string               `json:"product_id" validate:"required,uuid"`
	Size          *string              `json:"size"`
	Quantity      int                  `json:"quantity" validate:"required,min=1"`
	Customization *types.Customization `json:"customization"`
}

type replaceItemsRequest struct {
	Items []replaceItemRequest `json:"items" validate:"dive"`
}

func (req replaceItemsRequest) toDesired() ([]cartsvc.DesiredItem, error) {
	desired := make([]cartsvc.DesiredItem, 0, len(req.Items))
	for _, item := range req.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		desired = append(desired, cartsvc.DesiredItem{
			ProductID:     id,
			Size:          item.Size,
			Quantity:      item.Quantity,
			Customization: item.Customization,
		})
	}
	return desired, nil
}

// updateDetailsRequest uses pointer fields so absent keys leave the stored
// value untouched while explicit values overwrite it.
type updateDetailsRequest struct {
	SpecialInstructions *string        `json:"special_instructions"`
	DiscountCode        *string        `json:"discount_code"`
	ShippingAddress     *types.Address `json:"shipping_address"`
}

func (req updateDetailsRequest) toInput() cartsvc.UpdateDetailsInput {
	return cartsvc.UpdateDetailsInput{
		SpecialInstructions: req.SpecialInstructions,
		DiscountCode:        req.DiscountCode,
		ShippingAddress:     req.ShippingAddress,
	}
}
