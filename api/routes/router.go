package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/groovebay/storefront-backend/api/controllers"
	cartcontrollers "github.com/groovebay/storefront-backend/api/controllers/cart"
	ordercontrollers "github.com/groovebay/storefront-backend/api/controllers/orders"
	"github.com/groovebay/storefront-backend/api/middleware"
	cartsvc "github.com/groovebay/storefront-backend/internal/cart"
	ordersvc "github.com/groovebay/storefront-backend/internal/orders"
	product "github.com/groovebay/storefront-backend/internal/products"
	"github.com/groovebay/storefront-backend/pkg/config"
	"github.com/groovebay/storefront-backend/pkg/db"
	"github.com/groovebay/storefront-backend/pkg/logger"
	"github.com/groovebay/storefront-backend/pkg/metrics"
	"github.com/groovebay/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	httpMetrics *metrics.HTTPMetrics,
	dbP db.Pinger,
	redisClient *redis.Client,
	productService product.Service,
	cartService cartsvc.Service,
	ordersService ordersvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	// A typed nil *redis.Client must not satisfy the store interface.
	var idempotencyStore redis.IdempotencyStore
	var redisP redis.Pinger
	if redisClient != nil {
		idempotencyStore = redisClient
		redisP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if httpMetrics != nil {
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(productService, logg))
			r.Get("/{productId}", controllers.ProductDetail(productService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Fetch(cartService, logg))
			r.Put("/", cartcontrollers.Replace(cartService, logg))
			r.Delete("/", cartcontrollers.Clear(cartService, logg))
			r.Post("/items", cartcontrollers.AddItem(cartService, logg))
			r.Delete("/items/{productId}", cartcontrollers.RemoveItem(cartService, logg))
			r.Put("/details", cartcontrollers.UpdateDetails(cartService, logg))
		})

		r.Post("/checkout", ordercontrollers.Checkout(ordersService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(ordersService, logg))
			r.Get("/number/{orderNumber}", ordercontrollers.DetailByNumber(ordersService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersService, logg))
		})

		r.Route("/admin/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))
			r.Put("/{orderId}/status", ordercontrollers.UpdateStatus(ordersService, logg))
			r.Put("/{orderId}/payment-status", ordercontrollers.UpdatePaymentStatus(ordersService, logg))
		})
	})

	return r
}
