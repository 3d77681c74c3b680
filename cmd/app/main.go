package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wichananm65/food-order-backend/internal/address"
	"github.com/wichananm65/food-order-backend/internal/apperror"
	"github.com/wichananm65/food-order-backend/internal/cart"
	"github.com/wichananm65/food-order-backend/internal/category"
	"github.com/wichananm65/food-order-backend/internal/checkout"
	"github.com/wichananm65/food-order-backend/internal/favorite"
	"github.com/wichananm65/food-order-backend/internal/fooditem"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/cache"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/config"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/database"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/docstore"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/events"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/logger"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/metrics"
	"github.com/wichananm65/food-order-backend/internal/infrastructure/payment"
	"github.com/wichananm65/food-order-backend/internal/order"
	"github.com/wichananm65/food-order-backend/internal/restaurant"
	"github.com/wichananm65/food-order-backend/internal/selection"
	"github.com/wichananm65/food-order-backend/internal/user"
	"go.uber.org/multierr"
)

const serviceName = "food-order-backend"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: serviceName}).Error(context.Background(), "invalid configuration", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.IsDev(),
	})
	ctx := context.Background()

	var closers []io.Closer

	store, dbCloser, err := openStore(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "database unavailable", err)
		os.Exit(1)
	}
	if dbCloser != nil {
		closers = append(closers, dbCloser)
	}

	var kv cache.Store = cache.NewMemory()
	if cfg.Redis.Enabled() {
		client, err := cache.New(ctx, cfg.Redis)
		if err != nil {
			logg.Error(ctx, "redis unavailable", err)
			os.Exit(1)
		}
		kv = client
		closers = append(closers, client)
	} else {
		logg.Warn(ctx, "no redis configured, selections and checkout sessions are kept in memory")
	}

	var gateway payment.Gateway = payment.NewPassthrough()
	if cfg.Square.Enabled() {
		sq, err := payment.NewSquare(ctx, cfg.Square, logg)
		if err != nil {
			logg.Error(ctx, "square gateway misconfigured", err)
			os.Exit(1)
		}
		gateway = sq
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic))
		publisher = kp
		closers = append(closers, kp)
	}

	feePolicy, err := checkout.ParseFeePolicy(cfg.Checkout.FeePolicy)
	if err != nil {
		logg.Error(ctx, "invalid delivery fee policy", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := fiber.New(fiber.Config{ErrorHandler: apperror.ErrorHandler})
	app.Use(logger.Middleware(logg))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.App.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		var errs error
		errs = multierr.Append(errs, store.Ping(c.UserContext()))
		errs = multierr.Append(errs, kv.Ping(c.UserContext()))
		if errs != nil {
			return apperror.Respond(c, apperror.Wrap(apperror.CodeDependency, errs, "dependency check failed"))
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	userService := user.NewService(user.NewDocstoreRepository(store))
	userHandler := user.NewHandler(userService, cfg.JWT.Secret, cfg.JWT.TTL)

	restaurantService := restaurant.NewService(restaurant.NewDocstoreRepository(store))
	restaurantHandler := restaurant.NewHandler(restaurantService)

	foodItemService := fooditem.NewService(fooditem.NewDocstoreRepository(store), restaurantService)
	foodItemHandler := fooditem.NewHandler(foodItemService)

	addressService := address.NewService(address.NewDocstoreRepository(store))
	cartService := cart.NewService(cart.NewDocstoreRepository(store), foodItemService, restaurantService)
	orderService := order.NewService(order.NewDocstoreRepository(store), restaurantService)
	selections := selection.NewRepository(kv, cfg.Redis.SessionTTL)

	checkoutService := checkout.NewService(checkout.Dependencies{
		Selections:      selections,
		Sessions:        checkout.NewSessionRepository(kv, cfg.Redis.SessionTTL),
		Profiles:        userService,
		Addresses:       addressService,
		FoodItems:       foodItemService,
		DeliveryFees:    restaurantService,
		Orders:          orderService,
		Cart:            cartService,
		Gateway:         gateway,
		Idempotency:     kv,
		Reconciliations: store,
		Events:          publisher,
		Logger:          logg,
		Metrics:         metrics.NewCheckoutMetrics(registry),
	}, checkout.Settings{
		Charges:        checkout.Charges{Tax: cfg.Checkout.Tax, PlatformFee: cfg.Checkout.PlatformFee},
		Currency:       cfg.Checkout.Currency,
		FeePolicy:      feePolicy,
		RedirectDelay:  cfg.Checkout.RedirectDelay,
		IdempotencyTTL: cfg.Checkout.IdempotencyTTL,
	})

	userHandler.RegisterPublicRoutes(app)
	restaurantHandler.RegisterPublicRoutes(app)
	foodItemHandler.RegisterPublicRoutes(app)
	category.NewHandler(category.NewService(foodItemService)).RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWT.Secret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return apperror.Respond(c, apperror.Wrap(apperror.CodeUnauthorized, err, "sign in required").
				WithDetails(fiber.Map{"redirect": user.LoginRedirect}))
		},
	}))

	userHandler.RegisterProtectedRoutes(app)
	restaurantHandler.RegisterProtectedRoutes(app)
	foodItemHandler.RegisterProtectedRoutes(app)
	address.NewHandler(addressService).RegisterProtectedRoutes(app)
	cart.NewHandler(cartService).RegisterProtectedRoutes(app)
	selection.NewHandler(selections, cartService, checkoutService).RegisterProtectedRoutes(app)
	checkout.NewHandler(checkoutService).RegisterProtectedRoutes(app)
	order.NewHandler(orderService).RegisterProtectedRoutes(app)
	favorite.NewHandler(favorite.NewService(favorite.NewDocstoreRepository(store), foodItemService)).RegisterProtectedRoutes(app)

	go func() {
		if err := app.Listen(cfg.App.Addr); err != nil {
			logg.Error(ctx, "server stopped", err)
		}
	}()
	logg.Info(logg.WithField(ctx, "addr", cfg.App.Addr), "server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	var errs error
	errs = multierr.Append(errs, app.ShutdownWithTimeout(10*time.Second))
	for _, c := range closers {
		errs = multierr.Append(errs, c.Close())
	}
	if errs != nil {
		logg.Error(ctx, "shutdown finished with errors", errs)
		os.Exit(1)
	}
	logg.Info(ctx, "server stopped cleanly")
}

// openStore returns the Postgres document store when a database URL is
// configured and an in-memory one otherwise.
func openStore(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (docstore.Store, io.Closer, error) {
	if cfg.URL == "" {
		logg.Warn(ctx, "no database configured, using the in-memory store")
		return docstore.NewMemoryStore(), nil, nil
	}
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return nil, nil, multierr.Append(err, db.Close())
		}
	}
	return docstore.NewPostgresStore(db), db, nil
}
