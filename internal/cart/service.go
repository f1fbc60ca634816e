package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/groovebay/storefront-backend/pkg/db/models"
	pkgerrors "github.com/groovebay/storefront-backend/pkg/errors"
	"github.com/groovebay/storefront-backend/pkg/logger"
	"github.com/groovebay/storefront-backend/pkg/pricing"
	"github.com/groovebay/storefront-backend/pkg/types"
)

const maxSpecialInstructionsLen = 500

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetProductModels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Service exposes the user-facing cart operations.
type Service interface {
	GetCart(ctx context.Context, ownerID string) (*CartDTO, error)
	AddItem(ctx context.Context, ownerID string, input AddItemInput) (*CartDTO, error)
	ReplaceItems(ctx context.Context, ownerID string, desired []DesiredItem) (*CartDTO, error)
	RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID, size *string) (*CartDTO, error)
	UpdateDetails(ctx context.Context, ownerID string, input UpdateDetailsInput) (*CartDTO, error)
	ClearCart(ctx context.Context, ownerID string) (*CartDTO, error)
}

// AddItemInput captures one add-to-cart request.
type AddItemInput struct {
	ProductID     uuid.UUID
	Size          *string
	Quantity      int
	Customization *types.Customization
}

// DesiredItem is one line of a client-held cart submitted for a full sync.
// Client-supplied names, images and prices are ignored; pricing is always
// re-derived from the catalog.
type DesiredItem struct {
	ProductID     uuid.UUID
	Size          *string
	Quantity      int
	Customization *types.Customization
}

// UpdateDetailsInput carries the optional cart detail fields. Nil means
// "leave unchanged"; a present value overwrites the field wholesale.
type UpdateDetailsInput struct {
	SpecialInstructions *string
	DiscountCode        *string
	ShippingAddress     *types.Address
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
	logg     *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, products: products, logg: logg}, nil
}

// GetCart returns the owner's cart, dropping lines whose product no longer
// exists in the catalog. The filtered cart is persisted so stale references
// do not accumulate; a clean cart is returned without any write.
func (s *service) GetCart(ctx context.Context, ownerID string) (*CartDTO, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	cart, exists, err := s.loadCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return emptyCartDTO(ownerID), nil
	}

	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	known, err := s.products.GetProductModels(ctx, ids)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	dropped := 0
	for _, item := range cart.Items {
		if _, ok := known[item.ProductID]; !ok {
			dropped++
			continue
		}
		kept = append(kept, item)
	}

	if dropped == 0 {
		return toCartDTO(cart), nil
	}

	cart.Items = kept
	s.logg.Warn(
		s.logg.WithFields(ctx, map[string]any{"owner_id": ownerID, "dropped": dropped}),
		"pruned cart lines referencing deleted products",
	)

	saved, err := s.saveCart(ctx, cart)
	if err != nil {
		return nil, err
	}
	return toCartDTO(saved), nil
}

// AddItem merges the requested product into the cart. An existing
// (product, size) line absorbs the quantity and picks up the product's
// current price; otherwise a new line is appended.
func (s *service) AddItem(ctx context.Context, ownerID string, input AddItemInput) (*CartDTO, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.loadProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	cart, _, err := s.loadCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	key := keyFor(input.ProductID, input.Size)
	merged := false
	for i := range cart.Items {
		if keyFor(cart.Items[i].ProductID, cart.Items[i].Size) != key {
			continue
		}
		cart.Items[i].Quantity += input.Quantity
		cart.Items[i].UnitPrice = product.Price
		cart.Items[i].Name = product.Name
		cart.Items[i].Image = product.Image
		if input.Customization != nil {
			cart.Items[i].Customization = input.Customization
		}
		merged = true
		break
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:     product.ID,
			Size:          sizeForStorage(input.Size),
			Quantity:      input.Quantity,
			UnitPrice:     product.Price,
			Name:          product.Name,
			Image:         product.Image,
			Customization: input.Customization,
		})
	}

	saved, err := s.saveCart(ctx, cart)
	if err != nil {
		return nil, err
	}
	return toCartDTO(saved), nil
}

// ReplaceItems swaps the cart's entire line set for the reconciled desired
// list. Lines with non-positive quantity, unknown products or out-of-stock
// products are dropped with a warning rather than failing the sync, and
// duplicate (product, size) pairs collapse into one line by summing quantity.
func (s *service) ReplaceItems(ctx context.Context, ownerID string, desired []DesiredItem) (*CartDTO, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	wanted := make([]DesiredItem, 0, len(desired))
	ids := make([]uuid.UUID, 0, len(desired))
	seen := map[uuid.UUID]struct{}{}
	for _, item := range desired {
		if item.Quantity <= 0 || item.ProductID == uuid.Nil {
			continue
		}
		wanted = append(wanted, item)
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}

	known, err := s.products.GetProductModels(ctx, ids)
	if err != nil {
		return nil, err
	}

	var items []models.CartItem
	index := map[lineKey]int{}
	for _, item := range wanted {
		product, ok := known[item.ProductID]
		if !ok {
			s.warnDropped(ctx, ownerID, item.ProductID, "product no longer exists")
			continue
		}
		if !product.InStock {
			s.warnDropped(ctx, ownerID, item.ProductID, "product is out of stock")
			continue
		}

		key := keyFor(item.ProductID, item.Size)
		if i, ok := index[key]; ok {
			items[i].Quantity += item.Quantity
			if item.Customization != nil {
				items[i].Customization = item.Customization
			}
			continue
		}
		index[key] = len(items)
		items = append(items, models.CartItem{
			ProductID:     product.ID,
			Size:          sizeForStorage(item.Size),
			Quantity:      item.Quantity,
			UnitPrice:     product.Price,
			Name:          product.Name,
			Image:         product.Image,
			Customization: item.Customization,
		})
	}

	cart, _, err := s.loadCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	cart.Items = items

	saved, err := s.saveCart(ctx, cart)
	if err != nil {
		return nil, err
	}
	return toCartDTO(saved), nil
}

// RemoveItem deletes the matching (product, size) line.
func (s *service) RemoveItem(ctx context.Context, ownerID string, productID uuid.UUID, size *string) (*CartDTO, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	cart, exists, err := s.loadCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	key := keyFor(productID, size)
	found := -1
	for i := range cart.Items {
		if keyFor(cart.Items[i].ProductID, cart.Items[i].Size) == key {
			found = i
			break
		}
	}
	if found < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	cart.Items = append(cart.Items[:found], cart.Items[found+1:]...)

	saved, err := s.saveCart(ctx, cart)
	if err != nil {
		return nil, err
	}
	return toCartDTO(saved), nil
}

// UpdateDetails overwrites the supplied cart fields wholesale. An empty
// discount code clears the discount; an unrecognized one is rejected.
func (s *service) UpdateDetails(ctx context.Context, ownerID string, input UpdateDetailsInput) (*CartDTO, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	cart, _, err := s.loadCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if input.SpecialInstructions != nil {
		instructions := strings.TrimSpace(*input.SpecialInstructions)
		if utf8.RuneCountInString(instructions) > maxSpecialInstructionsLen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "special instructions exceed 500 characters")
		}
		cart.SpecialInstructions = instructions
	}

	if input.DiscountCode != nil {
		code := strings.TrimSpace(*input.DiscountCode)
		if code == "" {
			cart.Discount = nil
		} else {
			discount, ok := pricing.ResolveDiscountCode(code)
			if !ok {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "unrecognized discount code")
			}
			cart.Discount = &discount
		}
	}

	if input.ShippingAddress != nil {
		address := *input.ShippingAddress
		address.Normalize()
		cart.ShippingAddress = &address
	}

	saved, err := s.saveCart(ctx, cart)
	if err != nil {
		return nil, err
	}
	return toCartDTO(saved), nil
}

// ClearCart empties the cart and resets discount, instructions and address.
func (s *service) ClearCart(ctx context.Context, ownerID string) (*CartDTO, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	cart, exists, err := s.loadCart(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return emptyCartDTO(ownerID), nil
	}

	cart.Items = nil
	cart.Discount = nil
	cart.SpecialInstructions = ""
	cart.ShippingAddress = nil

	saved, err := s.saveCart(ctx, cart)
	if err != nil {
		return nil, err
	}
	return toCartDTO(saved), nil
}

func (s *service) loadCart(ctx context.Context, ownerID string) (*models.Cart, bool, error) {
	cart, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Cart{OwnerID: ownerID}, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, true, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	known, err := s.products.GetProductModels(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	product, ok := known[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if !product.InStock {
		return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "product is out of stock")
	}
	return &product, nil
}

func (s *service) saveCart(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	var saved *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		saved, txErr = s.repo.WithTx(tx).Save(ctx, cart)
		return txErr
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return saved, nil
}

func (s *service) warnDropped(ctx context.Context, ownerID string, productID uuid.UUID, reason string) {
	s.logg.Warn(
		s.logg.WithFields(ctx, map[string]any{
			"owner_id":   ownerID,
			"product_id": productID.String(),
			"reason":     reason,
		}),
		"dropping cart line during sync",
	)
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "owner id is required")
	}
	return nil
}
