package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storefront-labs/storefront-backend/api/controllers"
	"github.com/storefront-labs/storefront-backend/api/middleware"
	"github.com/storefront-labs/storefront-backend/pkg/config"
	"github.com/storefront-labs/storefront-backend/pkg/enums"
	"github.com/storefront-labs/storefront-backend/pkg/logger"
	"github.com/storefront-labs/storefront-backend/pkg/metrics"
	"github.com/storefront-labs/storefront-backend/pkg/redis"
)

// Options carries the optional infrastructure the router wires in.
type Options struct {
	// Redis enables the idempotency guard and the readiness check when set.
	Redis       *redis.Client
	DB          controllers.Pinger
	HTTPMetrics *metrics.HTTPMetrics
	// Gatherer backs the metrics endpoint; nil disables it.
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svc *Services, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Metrics(opts.HTTPMetrics),
	)

	deps := map[string]controllers.Pinger{"database": opts.DB}
	var idempotencyStore middleware.IdempotencyStore
	if opts.Redis != nil {
		deps["redis"] = opts.Redis
		idempotencyStore = opts.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if cfg.Metrics.Enabled && opts.Gatherer != nil {
		r.Handle(cfg.Metrics.Path, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.UserSync(svc.Users, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(svc.Addresses, logg))
			r.Post("/", controllers.AddressCreate(svc.Addresses, logg))
			r.Get("/{addressId}", controllers.AddressDetail(svc.Addresses, logg))
			r.Patch("/{addressId}", controllers.AddressUpdate(svc.Addresses, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(svc.Addresses, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(svc.Categories, false, logg))
			r.Get("/{slug}", controllers.CategoryBySlug(svc.Categories, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(svc.Products, false, logg))
			r.Get("/{productId}", controllers.ProductDetail(svc.Products, logg))
			r.Get("/slug/{slug}", controllers.ProductBySlug(svc.Products, logg))
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(svc.Cart, logg))
			r.Post("/", controllers.CartAdd(svc.Cart, logg))
			r.Patch("/{cartId}", controllers.CartSetQuantity(svc.Cart, logg))
			r.Delete("/{cartId}", controllers.CartRemove(svc.Cart, logg))
		})
		r.Post("/checkout", controllers.Checkout(svc.Checkout, logg))
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(svc.Orders, logg))
			r.Post("/", controllers.OrderCreate(svc.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svc.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(svc.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
		r.Use(middleware.UserSync(svc.Users, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(svc.Categories, true, logg))
			r.Post("/", controllers.AdminCategoryCreate(svc.Categories, logg))
			r.Get("/{categoryId}", controllers.AdminCategoryDetail(svc.Categories, logg))
			r.Patch("/{categoryId}", controllers.AdminCategoryUpdate(svc.Categories, logg))
			r.Delete("/{categoryId}", controllers.AdminCategoryDelete(svc.Categories, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(svc.Products, true, logg))
			r.Post("/", controllers.AdminProductCreate(svc.Products, logg))
			r.Get("/sku/{sku}", controllers.AdminProductBySKU(svc.Products, logg))
			r.Get("/{productId}", controllers.AdminProductDetail(svc.Products, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(svc.Products, logg))
			r.Delete("/{productId}", controllers.AdminProductDelete(svc.Products, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(svc.Orders, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(svc.Orders, logg))
			r.Post("/{orderId}/status", controllers.AdminOrderTransition(svc.Orders, logg))
		})
	})

	return r
}
