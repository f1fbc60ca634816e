package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	cartsvc "github.com/groovebay/storefront-backend/internal/cart"
	ordersvc "github.com/groovebay/storefront-backend/internal/orders"
	product "github.com/groovebay/storefront-backend/internal/products"
	pkgauth "github.com/groovebay/storefront-backend/pkg/auth"
	"github.com/groovebay/storefront-backend/pkg/config"
	"github.com/groovebay/storefront-backend/pkg/logger"
	"github.com/groovebay/storefront-backend/pkg/metrics"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubProductService struct {
	product.Service
}

func (stubProductService) ListProducts(context.Context, product.ListProductsInput) (*product.ProductListResult, error) {
	return &product.ProductListResult{Products: []product.ProductDTO{}}, nil
}

type stubCartService struct {
	cartsvc.Service
}

func (stubCartService) GetCart(_ context.Context, ownerID string) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{OwnerID: ownerID, Items: []cartsvc.CartLineDTO{}}, nil
}

type stubOrdersService struct {
	ordersvc.Service
}

func (stubOrdersService) ListOrders(context.Context, string, ordersvc.ListOrdersInput) (*ordersvc.OrderListResult, error) {
	return &ordersvc.OrderListResult{Orders: []ordersvc.OrderDTO{}}, nil
}

func (stubOrdersService) UpdateStatus(_ context.Context, input ordersvc.UpdateStatusInput) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{ID: input.OrderID, Status: input.Status}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "groovebay-idp"},
		Idempotency: config.IdempotencyConfig{
			CheckoutTTL: 168 * time.Hour,
			CartTTL:     24 * time.Hour,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		metrics.NewHTTPMetrics(),
		stubPinger{},
		nil,
		stubProductService{},
		stubCartService{},
		stubOrdersService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role string) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), time.Hour, uuid.NewString(), role)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthEndpointsAreOpen(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s got %d", path, resp.Code)
		}
		if env := resp.Header().Get("X-GrooveBay-Env"); env != "test" {
			t.Fatalf("expected env header on %s got %q", path, env)
		}
	}
}

func TestMetricsEndpointIsOpen(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for /metrics got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, ""))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for cart fetch got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/admin/orders/" + uuid.NewString() + "/status"
	body := `{"status":"shipped"}`

	nonAdmin := httptest.NewRequest(http.MethodPut, target, strings.NewReader(body))
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, ""))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPut, target, strings.NewReader(body))
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, pkgauth.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d: %s", resp.Code, resp.Body.String())
	}
}
