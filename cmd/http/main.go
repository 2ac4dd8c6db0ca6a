package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-commerce-service/config"
	"github.com/fekuna/omnipos-commerce-service/internal/auth"
	"github.com/fekuna/omnipos-commerce-service/internal/broker"
	"github.com/fekuna/omnipos-commerce-service/internal/cache"
	"github.com/fekuna/omnipos-commerce-service/internal/database/postgres"
	"github.com/fekuna/omnipos-commerce-service/internal/event"
	"github.com/fekuna/omnipos-commerce-service/internal/httpx"
	"github.com/fekuna/omnipos-commerce-service/internal/logger"
	"github.com/fekuna/omnipos-commerce-service/internal/payment/gateway"
	"github.com/fekuna/omnipos-commerce-service/internal/pricing"
	"github.com/fekuna/omnipos-commerce-service/internal/product"
	"github.com/fekuna/omnipos-commerce-service/internal/search"

	brandH "github.com/fekuna/omnipos-commerce-service/internal/brand/handler"
	brandRepoPkg "github.com/fekuna/omnipos-commerce-service/internal/brand/repository"
	brandUCPkg "github.com/fekuna/omnipos-commerce-service/internal/brand/usecase"

	cartH "github.com/fekuna/omnipos-commerce-service/internal/cart/handler"
	cartRepoPkg "github.com/fekuna/omnipos-commerce-service/internal/cart/repository"
	cartUCPkg "github.com/fekuna/omnipos-commerce-service/internal/cart/usecase"

	catH "github.com/fekuna/omnipos-commerce-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-commerce-service/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-commerce-service/internal/category/usecase"

	dashH "github.com/fekuna/omnipos-commerce-service/internal/dashboard/handler"
	dashUCPkg "github.com/fekuna/omnipos-commerce-service/internal/dashboard/usecase"

	invH "github.com/fekuna/omnipos-commerce-service/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/omnipos-commerce-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-commerce-service/internal/inventory/usecase"

	orderH "github.com/fekuna/omnipos-commerce-service/internal/order/handler"
	orderRepoPkg "github.com/fekuna/omnipos-commerce-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-commerce-service/internal/order/usecase"

	payH "github.com/fekuna/omnipos-commerce-service/internal/payment/handler"
	payRepoPkg "github.com/fekuna/omnipos-commerce-service/internal/payment/repository"
	payUCPkg "github.com/fekuna/omnipos-commerce-service/internal/payment/usecase"

	prodH "github.com/fekuna/omnipos-commerce-service/internal/product/handler"
	prodListenerPkg "github.com/fekuna/omnipos-commerce-service/internal/product/listener"
	prodRepoPkg "github.com/fekuna/omnipos-commerce-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-commerce-service/internal/product/usecase"

	userH "github.com/fekuna/omnipos-commerce-service/internal/user/handler"
	userRepoPkg "github.com/fekuna/omnipos-commerce-service/internal/user/repository"
	userUCPkg "github.com/fekuna/omnipos-commerce-service/internal/user/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))
	tx := postgres.NewTransactor(db)

	// 4. Initialize Repositories
	catRepo := catRepoPkg.NewPGRepository(db)
	brandRepo := brandRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	userRepo := userRepoPkg.NewPGRepository(db)
	cartRepo := cartRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	payRepo := payRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 6. Initialize Kafka
	kafkaProducer := broker.NewProducer(cfg.Kafka.Brokers)
	defer kafkaProducer.Close()
	orderEvents := event.NewPublisher(kafkaProducer, cfg.Kafka.OrderTopic, appLogger)
	paymentEvents := event.NewPublisher(kafkaProducer, cfg.Kafka.PaymentTopic, appLogger)
	appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers))

	// 7. Initialize Elasticsearch; search falls back to SQL without it
	var index product.SearchIndex
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (Search features might be limited)", zap.Error(err))
	} else {
		index = esClient
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 8. Initialize UseCases
	calc := pricing.NewCalculator(cfg.Commerce.GSTRate)

	gateways := make([]gateway.Gateway, 0, len(cfg.Payment.Gateways))
	for _, name := range cfg.Payment.Gateways {
		gateways = append(gateways, gateway.NewMock(gateway.MockConfig{
			Name:    name,
			BaseURL: cfg.Payment.PaymentURL,
			Expiry:  time.Duration(cfg.Payment.ExpiryMinutes) * time.Minute,
			Secret:  cfg.Payment.WebhookSecret,
		}))
	}
	registry := gateway.NewRegistry(gateways...)

	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, redisClient, index, appLogger)
	brandUC := brandUCPkg.NewBrandUseCase(brandRepo, prodUC, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, tx, redisClient, appLogger)
	userUC := userUCPkg.NewUserUseCase(userRepo)
	cartUC := cartUCPkg.NewCartUseCase(cartRepo, prodUC, calc, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, prodUC, invUC, cartUC, tx, orderEvents, calc, orderUCPkg.Config{
		DefaultCurrency: cfg.Commerce.DefaultCurrency,
		DefaultLimit:    cfg.Commerce.DefaultPageSize,
		MaxLimit:        cfg.Commerce.MaxPageSize,
	}, appLogger)
	payUC := payUCPkg.NewPaymentUseCase(payRepo, orderUC, registry, tx, paymentEvents, payUCPkg.Config{
		DefaultLimit: cfg.Commerce.DefaultPageSize,
		MaxLimit:     cfg.Commerce.MaxPageSize,
	}, appLogger)
	dashUC := dashUCPkg.NewDashboardUseCase(userUC, orderUC, payUC)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 9. Start Listener
	if cfg.Kafka.EnableListener {
		kafkaConsumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.OrderTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()
		go prodListenerPkg.NewStockListener(kafkaConsumer, prodUC, appLogger).Start(ctx)
		appLogger.Info("Listening for order events", zap.String("topic", cfg.Kafka.OrderTopic), zap.String("group", cfg.Kafka.GroupID))
	}

	// 10. Initialize Handlers
	authn := auth.NewMiddleware(auth.NewJWTValidator(cfg.JWT.SecretKey))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	catH.NewCategoryHandler(catUC, appLogger).RegisterRoutes(mux, authn)
	brandH.NewBrandHandler(brandUC, appLogger).RegisterRoutes(mux, authn)
	prodH.NewProductHandler(prodUC, appLogger).RegisterRoutes(mux, authn)
	invH.NewInventoryHandler(invUC, prodUC, appLogger).RegisterRoutes(mux, authn)
	cartH.NewCartHandler(cartUC, appLogger).RegisterRoutes(mux, authn)
	orderH.NewOrderHandler(orderUC, appLogger).RegisterRoutes(mux, authn)
	payH.NewPaymentHandler(payUC, appLogger).RegisterRoutes(mux, authn)
	dashH.NewDashboardHandler(dashUC, appLogger).RegisterRoutes(mux, authn)
	userH.NewProfileHandler(userUC, appLogger).RegisterRoutes(mux, authn)

	limiter := httpx.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Sweep()
			}
		}
	}()

	// 11. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	server := &http.Server{
		Addr:         port,
		Handler:      httpx.Chain(mux, httpx.Recoverer(appLogger), httpx.RequestLogger(appLogger), limiter.Middleware),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
