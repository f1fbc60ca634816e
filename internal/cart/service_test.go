package cart

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/groovebay/storefront-backend/pkg/db/models"
	pkgerrors "github.com/groovebay/storefront-backend/pkg/errors"
	"github.com/groovebay/storefront-backend/pkg/logger"
	"github.com/groovebay/storefront-backend/pkg/types"
)

var addressFixture = types.Address{
	FullName:   "Asha Rao",
	Phone:      "+91 98765 43210",
	Street:     "14 MG Road",
	City:       "Bengaluru",
	State:      "Karnataka",
	PostalCode: "560001",
}

type stubCartRepo struct {
	carts map[string]*models.Cart
	saves int
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: map[string]*models.Cart{}}
}

func (r *stubCartRepo) WithTx(tx *gorm.DB) CartRepository { return r }

func (r *stubCartRepo) FindByOwner(ctx context.Context, ownerID string) (*models.Cart, error) {
	cart, ok := r.carts[ownerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneCart(cart), nil
}

func (r *stubCartRepo) Save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	r.saves++
	if err := recomputeTotals(cart); err != nil {
		return nil, err
	}
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}
	r.carts[cart.OwnerID] = cloneCart(cart)
	return cart, nil
}

func cloneCart(cart *models.Cart) *models.Cart {
	clone := *cart
	clone.Items = append([]models.CartItem(nil), cart.Items...)
	return &clone
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

func testProduct(price string) models.Product {
	return models.Product{
		ID:      uuid.New(),
		Name:    "graphic tee",
		Image:   "https://cdn.example.com/tee.jpg",
		Price:   decimal.RequireFromString(price),
		InStock: true,
	}
}

func newTestService(t *testing.T, loader *stubProductLoader) (Service, *stubCartRepo) {
	t.Helper()

	repo := newStubCartRepo()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, stubTxRunner{}, loader, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func mustDec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(value)
}

func TestAddItemMergesAndRefreshesPrice(t *testing.T) {
	t.Parallel()

	product := testProduct("75")
	loader := &stubProductLoader{products: map[uuid.UUID]models.Product{product.ID: product}}
	svc, _ := newTestService(t, loader)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "owner-1", AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("first add: %v", err)
	}

	// Catalog price changes between adds; the merged line must pick it up.
	product.Price = mustDec(t, "80")
	loader.products[product.ID] = product

	blank := "   "
	dto, err := svc.AddItem(ctx, "owner-1", AddItemInput{ProductID: product.ID, Size: &blank, Quantity: 1})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(dto.Items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(dto.Items))
	}
	if dto.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", dto.Items[0].Quantity)
	}
	if !dto.Items[0].UnitPrice.Equal(mustDec(t, "80")) {
		t.Fatalf("expected refreshed unit price 80, got %s", dto.Items[0].UnitPrice)
	}
	if dto.TotalItems != 3 {
		t.Fatalf("expected total items 3, got %d", dto.TotalItems)
	}
}

func TestAddThenDiscountScenario(t *testing.T) {
	t.Parallel()

	product := testProduct("75")
	loader := &stubProductLoader{products: map[uuid.UUID]models.Product{product.ID: product}}
	svc, _ := newTestService(t, loader)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "owner-1", AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	dto, err := svc.AddItem(ctx, "owner-1", AddItemInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(dto.Items) != 1 || dto.Items[0].Quantity != 3 {
		t.Fatalf("expected one line with quantity 3, got %+v", dto.Items)
	}
	if !dto.TotalAmount.Equal(mustDec(t, "225")) {
		t.Fatalf("expected total 225, got %s", dto.TotalAmount)
	}

	code := "welcome10"
	dto, err = svc.UpdateDetails(ctx, "owner-1", UpdateDetailsInput{DiscountCode: &code})
	if err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	if !dto.TotalAmount.Equal(mustDec(t, "202.5")) {
		t.Fatalf("expected discounted total 202.5, got %s", dto.TotalAmount)
	}
	if dto.Discount == nil || !dto.Discount.Amount.Equal(mustDec(t, "22.5")) {
		t.Fatalf("expected discount amount 22.5, got %+v", dto.Discount)
	}
}

func TestAddItemFailures(t *testing.T) {
	t.Parallel()

	outOfStock := testProduct("99")
	outOfStock.InStock = false
	loader := &stubProductLoader{products: map[uuid.UUID]models.Product{outOfStock.ID: outOfStock}}
	svc, repo := newTestService(t, loader)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "owner-1", AddItemInput{ProductID: uuid.New(), Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}

	_, err = svc.AddItem(ctx, "owner-1", AddItemInput{ProductID: outOfStock.ID, Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeOutOfStock {
		t.Fatalf("expected out-of-stock, got %v", err)
	}

	_, err = svc.AddItem(ctx, "owner-1", AddItemInput{ProductID: outOfStock.ID, Quantity: 0})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Aborted operations never write.
	if repo.saves != 0 {
		t.Fatalf("expected no saves, got %d", repo.saves)
	}
}

func TestReplaceItemsDropsStaleAndDedupes(t *testing.T) {
	t.Parallel()

	valid := testProduct("120")
	gone := uuid.New()
	loader := &stubProductLoader{products: map[uuid.UUID]models.Product{valid.ID: valid}}
	svc, _ := newTestService(t, loader)
	ctx := context.Background()

	size := "M"
	dto, err := svc.ReplaceItems(ctx, "owner-1", []DesiredItem{
		{ProductID: valid.ID, Size: &size, Quantity: 1},
		{ProductID: gone, Quantity: 4},
		{ProductID: valid.ID, Size: &size, Quantity: 2},
		{ProductID: valid.ID, Quantity: 0},
	})
	if err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}

	if len(dto.Items) != 1 {
		t.Fatalf("expected one surviving line, got %d", len(dto.Items))
	}
	if dto.Items[0].Quantity != 3 {
		t.Fatalf("expected deduped quantity 3, got %d", dto.Items[0].Quantity)
	}
	if !dto.TotalAmount.Equal(mustDec(t, "360")) {
		t.Fatalf("expected total 360 over surviving line only, got %s", dto.TotalAmount)
	}
}

func TestReplaceItemsDropsOutOfStock(t *testing.T) {
	t.Parallel()

	inStock := testProduct("50")
	unavailable := testProduct("70")
	unavailable.InStock = false
	loader := &stubProductLoader{products: map[uuid.UUID]models.Product{
		inStock.ID:     inStock,
		unavailable.ID: unavailable,
	}}
	svc, _ := newTestService(t, loader)

	dto, err := svc.ReplaceItems(context.Background(), "owner-1", []DesiredItem{
		{ProductID: inStock.ID, Quantity: 2},
		{ProductID: unavailable.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}
	if len(dto.Items) != 1 || dto.Items[0].ProductID != inStock.ID {
		t.Fatalf("expected only the in-stock line to survive, got %+v", dto.Items)
	}
}

func TestRemoveItemSizeEquivalence(t *testing.T) {
	t.Parallel()

	product := testProduct("75")
	loader := &stubProductLoader{products: map[uuid.UUID]models.Product{product.ID: product}}
	svc, _ := newTestService(t, loader)
	ctx := context.Background()

	empty := ""
	if _, err := svc.AddItem(ctx, "owner-1", AddItemInput{ProductID: product.ID, Size: &empty, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// nil size must match the line stored with an empty-string size.
	dto, err := svc.RemoveItem(ctx, "owner-1", product.ID, nil)
	if err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(dto.Items))
	}

	_, err = svc.RemoveItem(ctx, "owner-1", product.ID, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found for missing line, got %v", err)
	}
}

func TestClearCartResetsEverything(t *testing.T) {
	t.Parallel()

	product := testProduct("200")
	loader := &stubProductLoader{products: map[uuid.UUID]models.Product{product.ID: product}}
	svc, _ := newTestService(t, loader)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "owner-1", AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	code := "groovy20"
	instructions := "leave at the door"
	if _, err := svc.UpdateDetails(ctx, "owner-1", UpdateDetailsInput{
		DiscountCode:        &code,
		SpecialInstructions: &instructions,
	}); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}

	dto, err := svc.ClearCart(ctx, "owner-1")
	if err != nil {
		t.Fatalf("ClearCart: %v", err)
	}

	if len(dto.Items) != 0 || dto.Discount != nil || dto.SpecialInstructions != "" || dto.ShippingAddress != nil {
		t.Fatalf("expected fully reset cart, got %+v", dto)
	}
	if dto.TotalItems != 0 || !dto.TotalAmount.IsZero() {
		t.Fatalf("expected zero totals, got items=%d amount=%s", dto.TotalItems, dto.TotalAmount)
	}
}

func TestGetCartPrunesDeletedProducts(t *testing.T) {
	t.Parallel()

	kept := testProduct("100")
	doomed := testProduct("50")
	loader := &stubProductLoader{products: map[uuid.UUID]models.Product{
		kept.ID:   kept,
		doomed.ID: doomed,
	}}
	svc, repo := newTestService(t, loader)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "owner-1", AddItemInput{ProductID: kept.ID, Quantity: 1}); err != nil {
		t.Fatalf("add kept: %v", err)
	}
	if _, err := svc.AddItem(ctx, "owner-1", AddItemInput{ProductID: doomed.ID, Quantity: 1}); err != nil {
		t.Fatalf("add doomed: %v", err)
	}

	delete(loader.products, doomed.ID)

	savesBefore := repo.saves
	dto, err := svc.GetCart(ctx, "owner-1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(dto.Items) != 1 || dto.Items[0].ProductID != kept.ID {
		t.Fatalf("expected only the surviving line, got %+v", dto.Items)
	}
	if !dto.TotalAmount.Equal(mustDec(t, "100")) {
		t.Fatalf("expected total 100, got %s", dto.TotalAmount)
	}
	if repo.saves != savesBefore+1 {
		t.Fatalf("expected one healing save, got %d", repo.saves-savesBefore)
	}

	// A clean cart read must not write.
	savesBefore = repo.saves
	if _, err := svc.GetCart(ctx, "owner-1"); err != nil {
		t.Fatalf("second GetCart: %v", err)
	}
	if repo.saves != savesBefore {
		t.Fatalf("clean read should skip the write, got %d extra saves", repo.saves-savesBefore)
	}
}

func TestGetCartForUnknownOwnerIsEmptyAndUnsaved(t *testing.T) {
	t.Parallel()

	svc, repo := newTestService(t, &stubProductLoader{products: map[uuid.UUID]models.Product{}})

	dto, err := svc.GetCart(context.Background(), "fresh-owner")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if len(dto.Items) != 0 || dto.TotalItems != 0 || !dto.TotalAmount.IsZero() {
		t.Fatalf("expected empty cart, got %+v", dto)
	}
	if repo.saves != 0 {
		t.Fatal("empty cart read must not persist anything")
	}
}

func TestUpdateDetailsValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &stubProductLoader{products: map[uuid.UUID]models.Product{}})
	ctx := context.Background()

	bogus := "bogus"
	_, err := svc.UpdateDetails(ctx, "owner-1", UpdateDetailsInput{DiscountCode: &bogus})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown code, got %v", err)
	}

	long := strings.Repeat("x", maxSpecialInstructionsLen+1)
	_, err = svc.UpdateDetails(ctx, "owner-1", UpdateDetailsInput{SpecialInstructions: &long})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for long instructions, got %v", err)
	}
}

func TestUpdateDetailsAddressDefaultsCountry(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &stubProductLoader{products: map[uuid.UUID]models.Product{}})

	dto, err := svc.UpdateDetails(context.Background(), "owner-1", UpdateDetailsInput{
		ShippingAddress: &addressFixture,
	})
	if err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}
	if dto.ShippingAddress == nil || dto.ShippingAddress.Country != "India" {
		t.Fatalf("expected country default India, got %+v", dto.ShippingAddress)
	}
}
