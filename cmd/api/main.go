package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tanawat-dev/eventshop-backend/api/routes"
	"github.com/tanawat-dev/eventshop-backend/internal/cart"
	"github.com/tanawat-dev/eventshop-backend/internal/checkout"
	"github.com/tanawat-dev/eventshop-backend/internal/coupons"
	"github.com/tanawat-dev/eventshop-backend/internal/orders"
	"github.com/tanawat-dev/eventshop-backend/internal/points"
	"github.com/tanawat-dev/eventshop-backend/internal/shipping"
	"github.com/tanawat-dev/eventshop-backend/pkg/config"
	"github.com/tanawat-dev/eventshop-backend/pkg/db"
	"github.com/tanawat-dev/eventshop-backend/pkg/logger"
	"github.com/tanawat-dev/eventshop-backend/pkg/metrics"
	"github.com/tanawat-dev/eventshop-backend/pkg/migrate"
	"github.com/tanawat-dev/eventshop-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	cartRepo := cart.NewRepository(dbClient.DB())
	couponRepo := coupons.NewRepository(dbClient.DB())
	pointsRepo := points.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())

	cartService, err := cart.NewService(cartRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	couponService, err := coupons.NewService(couponRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	pointsService, err := points.NewService(pointsRepo, cfg.Points, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create points service", err)
		os.Exit(1)
	}

	shippingProvider, err := shipping.NewHTTPProvider(cfg.Shipping)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping provider", err)
		os.Exit(1)
	}
	shippingService, err := shipping.NewService(shippingProvider, cartRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping service", err)
		os.Exit(1)
	}

	orderClient, err := orders.NewHTTPClient(cfg.Orders)
	if err != nil {
		logg.Error(context.Background(), "failed to create order client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	checkoutService, err := checkout.NewService(checkout.Deps{
		Config:        cfg.Checkout,
		Tx:            dbClient,
		Carts:         cartRepo,
		Coupons:       couponRepo,
		Loyalty:       pointsRepo,
		Orders:        orderRepo,
		RPC:           orderClient,
		CouponService: couponService,
		PointsService: pointsService,
		Metrics:       metrics.NewCheckoutMetrics(registry),
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DBPinger:        dbClient,
			Redis:           redisClient,
			Registry:        registry,
			CartService:     cartService,
			CouponService:   couponService,
			PointsService:   pointsService,
			ShippingService: shippingService,
			CheckoutService: checkoutService,
			OrderRepo:       orderRepo,
		}),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
