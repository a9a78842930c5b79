package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-commerce/config"
	"github.com/fekuna/omnipos-commerce/internal/activitylog"
	"github.com/fekuna/omnipos-commerce/internal/auth"
	"github.com/fekuna/omnipos-commerce/internal/jobs"
	"github.com/fekuna/omnipos-commerce/internal/order"
	"github.com/fekuna/omnipos-commerce/internal/server"
	"github.com/fekuna/omnipos-commerce/pkg/broker"
	"github.com/fekuna/omnipos-commerce/pkg/cache"
	"github.com/fekuna/omnipos-commerce/pkg/database/mongodb"
	"github.com/fekuna/omnipos-commerce/pkg/database/postgres"
	"github.com/fekuna/omnipos-commerce/pkg/i18n"
	"github.com/fekuna/omnipos-commerce/pkg/logger"
	"github.com/fekuna/omnipos-commerce/pkg/middleware"
	"github.com/fekuna/omnipos-commerce/pkg/search"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	logH "github.com/fekuna/omnipos-commerce/internal/activitylog/handler"
	logRepoPkg "github.com/fekuna/omnipos-commerce/internal/activitylog/repository"
	logUCPkg "github.com/fekuna/omnipos-commerce/internal/activitylog/usecase"

	cartH "github.com/fekuna/omnipos-commerce/internal/cart/handler"
	cartRepoPkg "github.com/fekuna/omnipos-commerce/internal/cart/repository"
	cartUCPkg "github.com/fekuna/omnipos-commerce/internal/cart/usecase"

	catH "github.com/fekuna/omnipos-commerce/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-commerce/internal/category/repository"
	catUCPkg "github.com/fekuna/omnipos-commerce/internal/category/usecase"

	cmsH "github.com/fekuna/omnipos-commerce/internal/cms/handler"
	cmsRepoPkg "github.com/fekuna/omnipos-commerce/internal/cms/repository"
	cmsUCPkg "github.com/fekuna/omnipos-commerce/internal/cms/usecase"

	discH "github.com/fekuna/omnipos-commerce/internal/discount/handler"
	discRepoPkg "github.com/fekuna/omnipos-commerce/internal/discount/repository"
	discUCPkg "github.com/fekuna/omnipos-commerce/internal/discount/usecase"

	flagH "github.com/fekuna/omnipos-commerce/internal/featureflag/handler"
	flagRepoPkg "github.com/fekuna/omnipos-commerce/internal/featureflag/repository"
	flagUCPkg "github.com/fekuna/omnipos-commerce/internal/featureflag/usecase"

	flashH "github.com/fekuna/omnipos-commerce/internal/flashsale/handler"
	flashRepoPkg "github.com/fekuna/omnipos-commerce/internal/flashsale/repository"
	flashUCPkg "github.com/fekuna/omnipos-commerce/internal/flashsale/usecase"

	invH "github.com/fekuna/omnipos-commerce/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/omnipos-commerce/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-commerce/internal/inventory/usecase"

	loyH "github.com/fekuna/omnipos-commerce/internal/loyalty/handler"
	loyListenerPkg "github.com/fekuna/omnipos-commerce/internal/loyalty/listener"
	loyRepoPkg "github.com/fekuna/omnipos-commerce/internal/loyalty/repository"
	loyUCPkg "github.com/fekuna/omnipos-commerce/internal/loyalty/usecase"

	mktH "github.com/fekuna/omnipos-commerce/internal/marketing/handler"
	mktRepoPkg "github.com/fekuna/omnipos-commerce/internal/marketing/repository"
	mktUCPkg "github.com/fekuna/omnipos-commerce/internal/marketing/usecase"

	mediaH "github.com/fekuna/omnipos-commerce/internal/media/handler"
	mediaRepoPkg "github.com/fekuna/omnipos-commerce/internal/media/repository"
	mediaStoragePkg "github.com/fekuna/omnipos-commerce/internal/media/storage"
	mediaUCPkg "github.com/fekuna/omnipos-commerce/internal/media/usecase"

	orderH "github.com/fekuna/omnipos-commerce/internal/order/handler"
	orderRepoPkg "github.com/fekuna/omnipos-commerce/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-commerce/internal/order/usecase"

	posH "github.com/fekuna/omnipos-commerce/internal/pos/handler"
	posRepoPkg "github.com/fekuna/omnipos-commerce/internal/pos/repository"
	posUCPkg "github.com/fekuna/omnipos-commerce/internal/pos/usecase"

	prodH "github.com/fekuna/omnipos-commerce/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-commerce/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-commerce/internal/product/usecase"

	reviewH "github.com/fekuna/omnipos-commerce/internal/review/handler"
	reviewRepoPkg "github.com/fekuna/omnipos-commerce/internal/review/repository"
	reviewUCPkg "github.com/fekuna/omnipos-commerce/internal/review/usecase"

	seoH "github.com/fekuna/omnipos-commerce/internal/seo/handler"
	seoRepoPkg "github.com/fekuna/omnipos-commerce/internal/seo/repository"
	seoUCPkg "github.com/fekuna/omnipos-commerce/internal/seo/usecase"

	themeH "github.com/fekuna/omnipos-commerce/internal/theme/handler"
	themeRepoPkg "github.com/fekuna/omnipos-commerce/internal/theme/repository"
	themeUCPkg "github.com/fekuna/omnipos-commerce/internal/theme/usecase"

	userH "github.com/fekuna/omnipos-commerce/internal/user/handler"
	userRepoPkg "github.com/fekuna/omnipos-commerce/internal/user/repository"
	userUCPkg "github.com/fekuna/omnipos-commerce/internal/user/usecase"
)

const (
	jobTimeout      = 5 * time.Minute
	healthInterval  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
	limiterIdle     = 30 * time.Minute
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 1.5 Initialize i18n. Embedded locales first, then optional overrides from disk.
	if err := i18n.Init(); err != nil {
		log.Fatalf("Failed to load embedded locales: %v", err)
	}
	if dir := os.Getenv("LOCALES_DIR"); dir != "" {
		for _, lang := range []string{"en", "id"} {
			if err := i18n.Load(dir + "/active." + lang + ".json"); err != nil {
				log.Printf("Failed to load %s locales: %v", lang, err)
			}
		}
	}

	// 2. Initialize Logger
	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     cfg.IsDevelopment(),
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
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
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5. Initialize Kafka
	orderEvents := broker.NewProducer(&broker.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.OrdersTopic})
	cartEvents := broker.NewProducer(&broker.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.CartsTopic})
	orderConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrdersTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	appLogger.Info("Kafka configured", zap.Strings("brokers", cfg.Kafka.Brokers))

	// 5.5 Initialize Elasticsearch. Catalog search falls back to Postgres without it.
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch, search uses the database", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 5.8 Initialize MongoDB for the activity log. Without it entries only reach the logger.
	var (
		mongoClient *mongo.Client
		logRepo     activitylog.Repository
	)
	if cfg.Mongo.URI != "" {
		mongoClient, err = mongodb.Connect(context.Background(), &mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			appLogger.Warn("Could not connect to MongoDB, activity log is not persisted", zap.Error(err))
		} else {
			mongoRepo := logRepoPkg.NewMongoRepository(mongoClient.Database(cfg.Mongo.Database))
			if err := mongoRepo.EnsureIndexes(context.Background()); err != nil {
				appLogger.Warn("Could not create activity log indexes", zap.Error(err))
			}
			logRepo = mongoRepo
			appLogger.Info("Connected to MongoDB", zap.String("db_name", cfg.Mongo.Database))
		}
	}

	// 6. Initialize Repositories
	userRepo := userRepoPkg.NewPGRepository(db)
	catRepo := catRepoPkg.NewPGRepository(db)
	prodRepo := prodRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	cartRepo := cartRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	discRepo := discRepoPkg.NewPGRepository(db)
	reviewRepo := reviewRepoPkg.NewPGRepository(db)
	loyRepo := loyRepoPkg.NewPGRepository(db)
	cmsRepo := cmsRepoPkg.NewPGRepository(db)
	flashRepo := flashRepoPkg.NewPGRepository(db)
	posRepo := posRepoPkg.NewPGRepository(db)
	mediaRepo := mediaRepoPkg.NewPGRepository(db)
	flagRepo := flagRepoPkg.NewPGRepository(db)
	themeRepo := themeRepoPkg.NewPGRepository(db)
	seoRepo := seoRepoPkg.NewPGRepository(db)
	mktRepo := mktRepoPkg.NewPGRepository(db)

	// 7. Initialize UseCases
	tokens := auth.NewTokenManager(cfg.JWT.SecretKey, cfg.JWT.TTL)
	logUC := logUCPkg.NewActivityLogUseCase(logRepo, appLogger)
	flagUC := flagUCPkg.NewFeatureFlagUseCase(flagRepo, redisClient, logUC, appLogger)
	flashUC := flashUCPkg.NewFlashSaleUseCase(flashRepo, logUC, appLogger)
	discUC := discUCPkg.NewDiscountUseCase(discRepo, logUC, appLogger)
	loyUC := loyUCPkg.NewLoyaltyUseCase(loyRepo, loyUCPkg.Rates{
		PointValue:        cfg.Commerce.PointValue,
		PointsPerCurrency: cfg.Commerce.PointsPerCurrency,
	}, flagUC, logUC, appLogger)
	catUC := catUCPkg.NewCategoryUseCase(catRepo, logUC, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(prodRepo, redisClient, esClient, flashUC, logUC, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, redisClient, cfg.Commerce.LowStockThreshold, appLogger)
	cartUC := cartUCPkg.NewCartUseCase(cartRepo, flashUC, cartEvents, cfg.Commerce.CartAbandonAfter, appLogger)
	userUC := userUCPkg.NewUserUseCase(userRepo, tokens, loyUC, cartUC, logUC, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, order.Settings{
		Currency:              cfg.Commerce.Currency,
		ShippingFlatRate:      cfg.Commerce.ShippingFlatRate,
		FreeShippingThreshold: cfg.Commerce.FreeShippingThreshold,
		TaxRatePercent:        cfg.Commerce.TaxRatePercent,
		PointValue:            cfg.Commerce.PointValue,
	}, orderUCPkg.Collaborators{
		Carts:     cartUC,
		Flash:     flashUC,
		Discounts: discUC,
		Loyalty:   loyUC,
		Flags:     flagUC,
		Events:    orderEvents,
		Activity:  logUC,
		Listings:  redisClient,
	}, appLogger)
	reviewUC := reviewUCPkg.NewReviewUseCase(reviewRepo, redisClient, logUC, appLogger)
	cmsUC := cmsUCPkg.NewCMSUseCase(cmsRepo, logUC, appLogger)
	posUC := posUCPkg.NewPOSUseCase(posRepo, orderUC, userUC, appLogger)
	mediaUC := mediaUCPkg.NewMediaUseCase(mediaRepo, mediaStoragePkg.NewLocalStore(cfg.Media.Dir), mediaUCPkg.Options{
		BaseURL:      cfg.Media.BaseURL,
		MaxBytes:     int64(cfg.Media.MaxUploadMB) << 20,
		AllowedTypes: cfg.Media.AllowedTypes,
	}, logUC, appLogger)
	themeUC := themeUCPkg.NewThemeUseCase(themeRepo, redisClient, logUC, appLogger)
	seoUC := seoUCPkg.NewSEOUseCase(seoRepo, redisClient, cfg.Server.PublicBaseURL, logUC, appLogger)
	mktUC := mktUCPkg.NewMarketingUseCase(mktRepo, appLogger)

	// 7.5 Start background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loyListener := loyListenerPkg.NewOrderListener(orderConsumer, loyUC, appLogger)
	go loyListener.Start(ctx)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, appLogger)

	scheduler := jobs.NewScheduler(appLogger, jobTimeout)
	if err := jobs.Register(scheduler, flashUC, cartUC, appLogger); err != nil {
		appLogger.Fatal("Could not schedule jobs", zap.Error(err))
	}
	if err := scheduler.Add("@every 10m", "rate_limiter_cleanup", func(context.Context) error {
		limiter.Cleanup(limiterIdle)
		return nil
	}); err != nil {
		appLogger.Fatal("Could not schedule jobs", zap.Error(err))
	}
	scheduler.Start()

	// 8. Initialize Handlers
	router := server.NewRouter(server.Deps{
		Handlers: server.Handlers{
			User:       userH.NewUserHandler(userUC, appLogger),
			Category:   catH.NewCategoryHandler(catUC, appLogger),
			Product:    prodH.NewProductHandler(prodUC, appLogger),
			Inventory:  invH.NewInventoryHandler(invUC, appLogger),
			Cart:       cartH.NewCartHandler(cartUC, appLogger),
			Order:      orderH.NewOrderHandler(orderUC, appLogger),
			Discount:   discH.NewDiscountHandler(discUC, appLogger),
			Review:     reviewH.NewReviewHandler(reviewUC, appLogger),
			Loyalty:    loyH.NewLoyaltyHandler(loyUC, appLogger),
			CMS:        cmsH.NewCMSHandler(cmsUC, appLogger),
			FlashSale:  flashH.NewFlashSaleHandler(flashUC, appLogger),
			POS:        posH.NewPOSHandler(posUC, appLogger),
			Media:      mediaH.NewMediaHandler(mediaUC, int64(cfg.Media.MaxUploadMB)<<20, appLogger),
			Flags:      flagH.NewFlagHandler(flagUC, appLogger),
			Theme:      themeH.NewThemeHandler(themeUC, appLogger),
			SEO:        seoH.NewSEOHandler(seoUC, appLogger),
			Newsletter: mktH.NewNewsletterHandler(mktUC, appLogger),
			Activity:   logH.NewActivityLogHandler(logUC, appLogger),
		},
		Tokens:   tokens,
		Flags:    flagUC,
		Limiter:  limiter,
		DB:       db,
		MediaDir: cfg.Media.Dir,
		Logger:   appLogger,
	})

	// 9. Start HTTP and gRPC health servers
	httpServer := &http.Server{
		Addr:              listenAddr(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	lis, err := net.Listen("tcp", listenAddr(cfg.Server.GRPCPort))
	if err != nil {
		appLogger.Fatal("failed to listen", zap.Error(err))
	}
	healthServer := server.NewHealthServer(db, appLogger)
	go healthServer.Watch(ctx, healthInterval)
	go func() {
		appLogger.Info("Starting gRPC health server", zap.String("addr", lis.Addr().String()))
		if err := healthServer.Serve(lis); err != nil {
			appLogger.Error("failed to serve grpc", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	err = multierr.Combine(
		httpServer.Shutdown(shutdownCtx),
		scheduler.Stop(shutdownCtx),
	)
	healthServer.Shutdown()
	cancel()

	err = multierr.Append(err, orderConsumer.Close())
	err = multierr.Append(err, orderEvents.Close())
	err = multierr.Append(err, cartEvents.Close())
	err = multierr.Append(err, redisClient.Close())
	if mongoClient != nil {
		err = multierr.Append(err, mongoClient.Disconnect(shutdownCtx))
	}
	err = multierr.Append(err, db.Close())
	if err != nil {
		appLogger.Error("Shutdown finished with errors", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func listenAddr(port string) string {
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
