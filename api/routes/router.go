package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tanawat-dev/eventshop-backend/api/controllers"
	"github.com/tanawat-dev/eventshop-backend/api/middleware"
	cartsvc "github.com/tanawat-dev/eventshop-backend/internal/cart"
	checkoutsvc "github.com/tanawat-dev/eventshop-backend/internal/checkout"
	couponsvc "github.com/tanawat-dev/eventshop-backend/internal/coupons"
	ordersvc "github.com/tanawat-dev/eventshop-backend/internal/orders"
	pointsvc "github.com/tanawat-dev/eventshop-backend/internal/points"
	shippingsvc "github.com/tanawat-dev/eventshop-backend/internal/shipping"
	"github.com/tanawat-dev/eventshop-backend/pkg/config"
	"github.com/tanawat-dev/eventshop-backend/pkg/db"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
	pkgredis "github.com/tanawat-dev/eventshop-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DBPinger        db.Pinger
	Redis           *pkgredis.Client
	Registry        *prometheus.Registry
	CartService     cartsvc.Service
	CouponService   couponsvc.Service
	PointsService   pointsvc.Service
	ShippingService shippingsvc.Service
	CheckoutService checkoutsvc.Service
	OrderRepo       ordersvc.OrderRepository
}

// NewRouter assembles the chi router with the full middleware chain.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartService, logg))
			r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
			r.Patch("/items/{variantId}", controllers.CartUpdateItem(deps.CartService, logg))
			r.Delete("/items/{variantId}", controllers.CartRemoveItem(deps.CartService, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.CouponCatalog(deps.CouponService, logg))
			r.Get("/applied", controllers.CouponApplied(deps.CouponService, logg))
			r.Post("/applied", controllers.CouponApply(deps.CouponService, logg))
			r.Delete("/applied/{couponId}", controllers.CouponRemove(deps.CouponService, logg))
		})

		r.Route("/points", func(r chi.Router) {
			r.Get("/", controllers.PointsFetch(deps.PointsService, logg))
			r.Put("/balance", controllers.PointsSyncBalance(deps.PointsService, logg))
			r.Put("/selection", controllers.PointsSelect(deps.PointsService, logg))
		})

		r.Route("/shipping", func(r chi.Router) {
			r.Get("/options", controllers.ShippingOptions(deps.ShippingService, cfg.Checkout, logg))
			r.Put("/selection", controllers.ShippingSelect(deps.ShippingService, deps.CartService, cfg.Checkout, logg))
		})

		r.Get("/checkout", controllers.CheckoutPreview(deps.CheckoutService, logg))
		r.Post("/checkout", controllers.Checkout(deps.CheckoutService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(deps.OrderRepo, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrderRepo, logg))
		})
	})

	return r
}
