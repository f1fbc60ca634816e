package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/groovebay/storefront-backend/internal/cart"
	"github.com/groovebay/storefront-backend/pkg/db"
	"github.com/groovebay/storefront-backend/pkg/db/models"
	"github.com/groovebay/storefront-backend/pkg/enums"
	pkgerrors "github.com/groovebay/storefront-backend/pkg/errors"
	"github.com/groovebay/storefront-backend/pkg/logger"
	"github.com/groovebay/storefront-backend/pkg/pagination"
	"github.com/groovebay/storefront-backend/pkg/pricing"
	"github.com/groovebay/storefront-backend/pkg/types"
)

const (
	orderNumberPrefix    = "GB"
	orderNumberAttempts  = 3
	estimatedTransitDays = 7
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetProductModels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// Service exposes checkout and order lifecycle operations.
type Service interface {
	Checkout(ctx context.Context, ownerID string, input CheckoutInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, ownerID string, id uuid.UUID) (*OrderDTO, error)
	GetOrderByNumber(ctx context.Context, ownerID, orderNumber string) (*OrderDTO, error)
	ListOrders(ctx context.Context, ownerID string, input ListOrdersInput) (*OrderListResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
	UpdatePaymentStatus(ctx context.Context, input UpdatePaymentStatusInput) (*OrderDTO, error)
}

// CheckoutInput carries the fields a checkout request supplies on top of the
// stored cart. A present shipping address overrides the cart's.
type CheckoutInput struct {
	PaymentMethod   enums.PaymentMethod
	ShippingAddress *types.Address
}

// ListOrdersInput carries the owner order list filters and page request.
type ListOrdersInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// UpdateStatusInput captures an admin order status transition.
type UpdateStatusInput struct {
	OrderID        uuid.UUID
	Status         enums.OrderStatus
	Note           string
	TrackingNumber *string
}

// UpdatePaymentStatusInput captures an admin payment status change.
type UpdatePaymentStatusInput struct {
	OrderID       uuid.UUID
	PaymentStatus enums.PaymentStatus
}

type service struct {
	repo     Repository
	carts    cart.CartRepository
	tx       txRunner
	products productLoader
	logg     *logger.Logger
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, carts cart.CartRepository, tx txRunner, products productLoader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
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
	return &service{repo: repo, carts: carts, tx: tx, products: products, logg: logg}, nil
}

// Checkout freezes the owner's cart into an immutable order. Every line is
// re-validated against the catalog and re-priced server-side; the order and
// the cart item wipe commit in one transaction. Later catalog changes never
// touch the snapshot.
func (s *service) Checkout(ctx context.Context, ownerID string, input CheckoutInput) (*OrderDTO, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner id is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	ownerCart, err := s.carts.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(ownerCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	address, err := resolveShippingAddress(input.ShippingAddress, ownerCart.ShippingAddress)
	if err != nil {
		return nil, err
	}

	items, lines, err := s.snapshotItems(ctx, ownerCart.Items)
	if err != nil {
		return nil, err
	}

	quote, err := pricing.ComputeQuote(lines, ownerCart.Discount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price cart")
	}

	now := time.Now().UTC()
	order := &models.Order{
		OwnerID:             ownerID,
		Items:               items,
		Subtotal:            quote.Subtotal,
		Discount:            ownerCart.Discount,
		DiscountAmount:      quote.DiscountAmount,
		ShippingCost:        quote.Shipping,
		Tax:                 quote.Tax,
		TotalAmount:         quote.Total,
		Status:              enums.OrderStatusPending,
		PaymentStatus:       enums.PaymentStatusPending,
		PaymentMethod:       input.PaymentMethod,
		ShippingAddress:     *address,
		SpecialInstructions: ownerCart.SpecialInstructions,
		History: types.OrderHistory{
			{Status: enums.OrderStatusPending, Note: "order placed", At: now},
		},
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var createErr error
		for attempt := 0; attempt < orderNumberAttempts; attempt++ {
			order.OrderNumber = newOrderNumber(now)
			if _, createErr = repo.Create(ctx, order); createErr == nil {
				break
			}
			if !db.IsUniqueViolation(createErr, "idx_orders_order_number") {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create order")
			}
		}
		if createErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "allocate order number")
		}

		// Only the items are wiped; discount, instructions and address stay
		// on the cart for the next session.
		ownerCart.Items = nil
		if _, err := s.carts.WithTx(tx).Save(ctx, ownerCart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart after checkout")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout")
	}

	s.logg.Info(
		s.logg.WithOrderNumber(s.logg.WithOwnerID(ctx, ownerID), order.OrderNumber),
		"order placed",
	)
	return toOrderDTO(order), nil
}

// GetOrder loads one of the owner's orders. Orders belonging to someone else
// read as not found.
func (s *service) GetOrder(ctx context.Context, ownerID string, id uuid.UUID) (*OrderDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.loadOrder(ctx, func(ctx context.Context) (*models.Order, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if order.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return toOrderDTO(order), nil
}

func (s *service) GetOrderByNumber(ctx context.Context, ownerID, orderNumber string) (*OrderDTO, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	order, err := s.loadOrder(ctx, func(ctx context.Context) (*models.Order, error) {
		return s.repo.FindByNumber(ctx, orderNumber)
	})
	if err != nil {
		return nil, err
	}
	if order.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return toOrderDTO(order), nil
}

func (s *service) ListOrders(ctx context.Context, ownerID string, input ListOrdersInput) (*OrderListResult, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "owner id is required")
	}
	if input.Filters.Status != nil && !input.Filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	rows, err := s.repo.ListByOwner(ctx, ownerID, input.Filters, cursor, pagination.LimitWithBuffer(input.Pagination.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	result := &OrderListResult{Orders: make([]OrderDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &next
	}
	for i := range rows {
		result.Orders = append(result.Orders, *toOrderDTO(&rows[i]))
	}
	return result, nil
}

// UpdateStatus moves an order through its lifecycle and appends a history
// entry. Shipped stamps the delivery estimate, delivered stamps the actual
// delivery. Terminal orders refuse further transitions.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.loadOrder(ctx, func(ctx context.Context) (*models.Order, error) {
		return s.repo.FindByID(ctx, input.OrderID)
	})
	if err != nil {
		return nil, err
	}
	if order.Status == input.Status {
		return toOrderDTO(order), nil
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is in a terminal state")
	}

	now := time.Now().UTC()
	order.Status = input.Status
	order.History = append(order.History, types.OrderHistoryEntry{
		Status: input.Status,
		Note:   input.Note,
		At:     now,
	})

	updates := map[string]any{
		"status":  input.Status,
		"history": order.History,
	}
	switch input.Status {
	case enums.OrderStatusShipped:
		estimated := now.AddDate(0, 0, estimatedTransitDays)
		order.EstimatedDelivery = &estimated
		updates["estimated_delivery"] = estimated
		if input.TrackingNumber != nil {
			order.TrackingNumber = input.TrackingNumber
			updates["tracking_number"] = *input.TrackingNumber
		}
	case enums.OrderStatusDelivered:
		delivered := now
		order.ActualDelivery = &delivered
		updates["actual_delivery"] = delivered
	}

	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	s.logg.Info(
		s.logg.WithFields(ctx, map[string]any{
			"order_number": order.OrderNumber,
			"status":       input.Status.String(),
		}),
		"order status updated",
	)
	return toOrderDTO(order), nil
}

// UpdatePaymentStatus records a payment outcome. A successful payment on a
// pending order confirms it in the same write.
func (s *service) UpdatePaymentStatus(ctx context.Context, input UpdatePaymentStatusInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !input.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
	}

	order, err := s.loadOrder(ctx, func(ctx context.Context) (*models.Order, error) {
		return s.repo.FindByID(ctx, input.OrderID)
	})
	if err != nil {
		return nil, err
	}

	order.PaymentStatus = input.PaymentStatus
	updates := map[string]any{"payment_status": input.PaymentStatus}

	if input.PaymentStatus == enums.PaymentStatusPaid && order.Status == enums.OrderStatusPending {
		order.Status = enums.OrderStatusConfirmed
		order.History = append(order.History, types.OrderHistoryEntry{
			Status: enums.OrderStatusConfirmed,
			Note:   "payment received",
			At:     time.Now().UTC(),
		})
		updates["status"] = enums.OrderStatusConfirmed
		updates["history"] = order.History
	}

	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
	}
	return toOrderDTO(order), nil
}

// snapshotItems freezes cart lines into order items at current catalog
// prices. Any line whose product vanished or went out of stock fails the
// checkout outright; the cart GET path is the place for silent healing.
func (s *service) snapshotItems(ctx context.Context, cartItems []models.CartItem) ([]models.OrderItem, []pricing.Line, error) {
	ids := make([]uuid.UUID, 0, len(cartItems))
	for _, item := range cartItems {
		ids = append(ids, item.ProductID)
	}
	known, err := s.products.GetProductModels(ctx, ids)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	items := make([]models.OrderItem, 0, len(cartItems))
	lines := make([]pricing.Line, 0, len(cartItems))
	for _, item := range cartItems {
		product, ok := known[item.ProductID]
		if !ok {
			return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "cart references a product that no longer exists").
				WithDetails(map[string]any{"product_id": item.ProductID.String()})
		}
		if !product.InStock {
			return nil, nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "product is out of stock").
				WithDetails(map[string]any{"product_id": item.ProductID.String()})
		}

		quantity := decimal.NewFromInt(int64(item.Quantity))
		items = append(items, models.OrderItem{
			ProductID:     product.ID,
			Name:          product.Name,
			Image:         product.Image,
			Size:          item.Size,
			Quantity:      item.Quantity,
			UnitPrice:     product.Price,
			TotalPrice:    product.Price.Mul(quantity),
			Customization: item.Customization,
		})
		lines = append(lines, pricing.Line{UnitPrice: product.Price, Quantity: item.Quantity})
	}
	return items, lines, nil
}

func (s *service) loadOrder(ctx context.Context, find func(ctx context.Context) (*models.Order, error)) (*models.Order, error) {
	order, err := find(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func resolveShippingAddress(override, stored *types.Address) (*types.Address, error) {
	source := override
	if source == nil {
		source = stored
	}
	if source == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}

	address := *source
	address.Normalize()
	if err := address.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}
	return &address, nil
}

// newOrderNumber derives a human-readable order number from the checkout
// time plus a random suffix. Uniqueness is enforced by the database; the
// caller retries on collision.
func newOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s%06d%03d", orderNumberPrefix, now.Unix()%1_000_000, rand.Intn(1000))
}
