package orders

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/groovebay/storefront-backend/internal/cart"
	"github.com/groovebay/storefront-backend/pkg/db/models"
	"github.com/groovebay/storefront-backend/pkg/enums"
	pkgerrors "github.com/groovebay/storefront-backend/pkg/errors"
	"github.com/groovebay/storefront-backend/pkg/logger"
	"github.com/groovebay/storefront-backend/pkg/pagination"
	"github.com/groovebay/storefront-backend/pkg/types"
)

type stubOrdersRepo struct {
	orders      map[uuid.UUID]*models.Order
	listRows    []models.Order
	lastLimit   int
	lastUpdates map[string]any
	createFails int
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createFails > 0 {
		s.createFails--
		return nil, fmt.Errorf(`duplicate key value violates unique constraint "idx_orders_order_number"`)
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	clone := *order
	s.orders[order.ID] = &clone
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *order
	return &clone, nil
}

func (s *stubOrdersRepo) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.OrderNumber == orderNumber {
			clone := *order
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) ListByOwner(ctx context.Context, ownerID string, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	s.lastLimit = limit
	return s.listRows, nil
}

func (s *stubOrdersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.lastUpdates = updates
	return nil
}

type stubCartRepo struct {
	cart  *models.Cart
	saved *models.Cart
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) cart.CartRepository { return s }

func (s *stubCartRepo) FindByOwner(ctx context.Context, ownerID string) (*models.Cart, error) {
	if s.cart == nil || s.cart.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *s.cart
	clone.Items = append([]models.CartItem(nil), s.cart.Items...)
	return &clone, nil
}

func (s *stubCartRepo) Save(ctx context.Context, c *models.Cart) (*models.Cart, error) {
	s.saved = c
	return c, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProductLoader struct {
	products map[uuid.UUID]models.Product
}

func (s *stubProductLoader) GetProductModels(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	found := map[uuid.UUID]models.Product{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			found[id] = p
		}
	}
	return found, nil
}

var testAddress = types.Address{
	FullName:   "Asha Rao",
	Phone:      "+91 98765 43210",
	Street:     "14 MG Road",
	City:       "Bengaluru",
	State:      "Karnataka",
	PostalCode: "560001",
}

func newTestService(t *testing.T, repo *stubOrdersRepo, carts *stubCartRepo, loader *stubProductLoader) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, carts, stubTxRunner{}, loader, logg)
	require.NoError(t, err)
	return svc
}

func checkoutFixture(t *testing.T) (*stubOrdersRepo, *stubCartRepo, *stubProductLoader, uuid.UUID) {
	t.Helper()

	productID := uuid.New()
	product := models.Product{
		ID:      productID,
		Name:    "graphic tee",
		Image:   "https://cdn.example.com/tee.jpg",
		Price:   decimal.RequireFromString("75"),
		InStock: true,
	}
	welcome := types.AppliedDiscount{
		Code:    "welcome10",
		Kind:    enums.DiscountKindPercentage,
		Percent: decimal.NewFromInt(10),
	}
	address := testAddress
	carts := &stubCartRepo{cart: &models.Cart{
		ID:      uuid.New(),
		OwnerID: "owner-1",
		Items: []models.CartItem{{
			ID:        uuid.New(),
			ProductID: productID,
			Quantity:  3,
			UnitPrice: decimal.RequireFromString("75"),
			Name:      product.Name,
			Image:     product.Image,
		}},
		Discount:        &welcome,
		ShippingAddress: &address,
	}}
	loader := &stubProductLoader{products: map[uuid.UUID]models.Product{productID: product}}
	return newStubOrdersRepo(), carts, loader, productID
}

func TestCheckoutSnapshotsAndClearsCart(t *testing.T) {
	t.Parallel()

	repo, carts, loader, productID := checkoutFixture(t)
	svc := newTestService(t, repo, carts, loader)

	dto, err := svc.Checkout(context.Background(), "owner-1", CheckoutInput{
		PaymentMethod: enums.PaymentMethodCOD,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(dto.OrderNumber, "GB"))
	assert.Len(t, dto.OrderNumber, 11)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, productID, dto.Items[0].ProductID)
	assert.True(t, dto.Items[0].TotalPrice.Equal(decimal.RequireFromString("225")))

	assert.True(t, dto.Subtotal.Equal(decimal.RequireFromString("225")))
	assert.True(t, dto.DiscountAmount.Equal(decimal.RequireFromString("22.5")))
	assert.True(t, dto.ShippingCost.Equal(decimal.RequireFromString("100")))
	assert.True(t, dto.Tax.Equal(decimal.RequireFromString("41")))
	assert.True(t, dto.TotalAmount.Equal(decimal.RequireFromString("343.5")))

	assert.Equal(t, enums.OrderStatusPending, dto.Status)
	assert.Equal(t, enums.PaymentStatusPending, dto.PaymentStatus)
	require.Len(t, dto.History, 1)
	assert.Equal(t, enums.OrderStatusPending, dto.History[0].Status)

	// Checkout wipes the items but keeps the rest of the cart.
	require.NotNil(t, carts.saved)
	assert.Empty(t, carts.saved.Items)
	assert.NotNil(t, carts.saved.Discount)
	assert.NotNil(t, carts.saved.ShippingAddress)
}

func TestCheckoutRepricesFromCatalog(t *testing.T) {
	t.Parallel()

	repo, carts, loader, productID := checkoutFixture(t)
	// Stale cart price; the snapshot must use the catalog's current one.
	product := loader.products[productID]
	product.Price = decimal.RequireFromString("80")
	loader.products[productID] = product
	carts.cart.Discount = nil

	svc := newTestService(t, repo, carts, loader)
	dto, err := svc.Checkout(context.Background(), "owner-1", CheckoutInput{
		PaymentMethod: enums.PaymentMethodCard,
	})
	require.NoError(t, err)
	assert.True(t, dto.Items[0].UnitPrice.Equal(decimal.RequireFromString("80")))
	assert.True(t, dto.Subtotal.Equal(decimal.RequireFromString("240")))
}

func TestCheckoutRetriesOrderNumberCollision(t *testing.T) {
	t.Parallel()

	repo, carts, loader, _ := checkoutFixture(t)
	repo.createFails = 1

	svc := newTestService(t, repo, carts, loader)
	dto, err := svc.Checkout(context.Background(), "owner-1", CheckoutInput{
		PaymentMethod: enums.PaymentMethodUPI,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dto.OrderNumber, "GB"))
}

func TestCheckoutFailures(t *testing.T) {
	t.Parallel()

	repo, carts, loader, productID := checkoutFixture(t)
	svc := newTestService(t, repo, carts, loader)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, "owner-1", CheckoutInput{PaymentMethod: "cheque"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.Checkout(ctx, "owner-without-cart", CheckoutInput{PaymentMethod: enums.PaymentMethodCOD})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	carts.cart.ShippingAddress = nil
	_, err = svc.Checkout(ctx, "owner-1", CheckoutInput{PaymentMethod: enums.PaymentMethodCOD})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	carts.cart.ShippingAddress = &testAddress

	product := loader.products[productID]
	product.InStock = false
	loader.products[productID] = product
	_, err = svc.Checkout(ctx, "owner-1", CheckoutInput{PaymentMethod: enums.PaymentMethodCOD})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeOutOfStock, typed.Code())

	delete(loader.products, productID)
	_, err = svc.Checkout(ctx, "owner-1", CheckoutInput{PaymentMethod: enums.PaymentMethodCOD})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())

	// Nothing committed on any failed attempt.
	assert.Nil(t, carts.saved)
	assert.Empty(t, repo.orders)
}

func placedOrder(repo *stubOrdersRepo, ownerID string, status enums.OrderStatus) *models.Order {
	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     "GB123456789",
		OwnerID:         ownerID,
		Status:          status,
		PaymentStatus:   enums.PaymentStatusPending,
		PaymentMethod:   enums.PaymentMethodCOD,
		ShippingAddress: testAddress,
		History: types.OrderHistory{
			{Status: enums.OrderStatusPending, Note: "order placed", At: time.Now().UTC()},
		},
		CreatedAt: time.Now().UTC(),
	}
	repo.orders[order.ID] = order
	return order
}

func TestGetOrderScopedToOwner(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	order := placedOrder(repo, "owner-1", enums.OrderStatusPending)
	svc := newTestService(t, repo, &stubCartRepo{}, &stubProductLoader{})
	ctx := context.Background()

	dto, err := svc.GetOrder(ctx, "owner-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, dto.OrderNumber)

	_, err = svc.GetOrder(ctx, "someone-else", order.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	dto, err = svc.GetOrderByNumber(ctx, "owner-1", order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, dto.ID)
}

func TestUpdateStatusShippedAndDelivered(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	order := placedOrder(repo, "owner-1", enums.OrderStatusConfirmed)
	svc := newTestService(t, repo, &stubCartRepo{}, &stubProductLoader{})
	ctx := context.Background()

	tracking := "TRK-001"
	dto, err := svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID:        order.ID,
		Status:         enums.OrderStatusShipped,
		Note:           "left warehouse",
		TrackingNumber: &tracking,
	})
	require.NoError(t, err)
	require.NotNil(t, dto.EstimatedDelivery)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 7), *dto.EstimatedDelivery, time.Minute)
	require.NotNil(t, dto.TrackingNumber)
	assert.Equal(t, tracking, *dto.TrackingNumber)
	assert.Len(t, dto.History, 2)
	assert.Contains(t, repo.lastUpdates, "estimated_delivery")

	repo.orders[order.ID].Status = enums.OrderStatusShipped
	dto, err = svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusDelivered,
	})
	require.NoError(t, err)
	require.NotNil(t, dto.ActualDelivery)
	assert.Contains(t, repo.lastUpdates, "actual_delivery")

	repo.orders[order.ID].Status = enums.OrderStatusDelivered
	_, err = svc.UpdateStatus(ctx, UpdateStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusReturned,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	order := placedOrder(repo, "owner-1", enums.OrderStatusPending)
	svc := newTestService(t, repo, &stubCartRepo{}, &stubProductLoader{})

	dto, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: order.ID,
		Status:  enums.OrderStatusPending,
	})
	require.NoError(t, err)
	assert.Len(t, dto.History, 1)
	assert.Nil(t, repo.lastUpdates)
}

func TestPaidOnPendingAutoConfirms(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	order := placedOrder(repo, "owner-1", enums.OrderStatusPending)
	svc := newTestService(t, repo, &stubCartRepo{}, &stubProductLoader{})

	dto, err := svc.UpdatePaymentStatus(context.Background(), UpdatePaymentStatusInput{
		OrderID:       order.ID,
		PaymentStatus: enums.PaymentStatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, dto.Status)
	assert.Equal(t, enums.PaymentStatusPaid, dto.PaymentStatus)
	assert.Len(t, dto.History, 2)
	assert.Equal(t, enums.OrderStatusConfirmed, dto.History[1].Status)
	assert.Contains(t, repo.lastUpdates, "status")
}

func TestPaidOnShippedKeepsStatus(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	order := placedOrder(repo, "owner-1", enums.OrderStatusShipped)
	svc := newTestService(t, repo, &stubCartRepo{}, &stubProductLoader{})

	dto, err := svc.UpdatePaymentStatus(context.Background(), UpdatePaymentStatusInput{
		OrderID:       order.ID,
		PaymentStatus: enums.PaymentStatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, dto.Status)
	assert.NotContains(t, repo.lastUpdates, "status")
}

func TestListOrdersPagination(t *testing.T) {
	t.Parallel()

	repo := newStubOrdersRepo()
	now := time.Now().UTC()
	repo.listRows = []models.Order{
		{ID: uuid.New(), OrderNumber: "GB000001001", OwnerID: "owner-1", ShippingAddress: testAddress, CreatedAt: now},
		{ID: uuid.New(), OrderNumber: "GB000001002", OwnerID: "owner-1", ShippingAddress: testAddress, CreatedAt: now.Add(-time.Minute)},
		{ID: uuid.New(), OrderNumber: "GB000001003", OwnerID: "owner-1", ShippingAddress: testAddress, CreatedAt: now.Add(-2 * time.Minute)},
	}
	svc := newTestService(t, repo, &stubCartRepo{}, &stubProductLoader{})

	result, err := svc.ListOrders(context.Background(), "owner-1", ListOrdersInput{
		Pagination: pagination.Params{Limit: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.lastLimit)
	assert.Len(t, result.Orders, 2)
	require.NotNil(t, result.NextCursor)

	cursor, err := pagination.ParseCursor(*result.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, repo.listRows[1].ID, cursor.ID)

	_, err = svc.ListOrders(context.Background(), "owner-1", ListOrdersInput{
		Pagination: pagination.Params{Cursor: "not-base64!"},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
