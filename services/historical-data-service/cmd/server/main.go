package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/client"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/config"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/events"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/handler"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/metrics"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/middleware"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/repository"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/service"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := validator.Register(cfg.Limits.StrictTimeframes); err != nil {
		logger.Fatal("Failed to register validators", zap.Error(err))
	}

	// Connect to database
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Range events go to Kafka when brokers are configured
	var publisher events.RangePublisher = events.NopPublisher{}
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		producer := events.NewProducer(brokers, cfg.Kafka.ClientID, logger)
		defer producer.Close()
		publisher = events.NewRangeEvents(producer, cfg.Kafka.RangeEventsTopic())
		logger.Info("Publishing range events to Kafka",
			zap.Strings("brokers", brokers),
			zap.String("topic", cfg.Kafka.RangeEventsTopic()))
	} else {
		logger.Info("No Kafka brokers configured, range events are dropped")
	}

	// Initialize repositories
	marketDataRepo := repository.NewMarketDataRepository(db, logger)
	symbolRepo := repository.NewSymbolRepository(db, logger)

	// Initialize clients
	backtestClient := client.NewBacktestClient(
		cfg.BacktestService.URL,
		cfg.BacktestService.ServiceKey,
		cfg.BacktestService.Timeout,
		cfg.BacktestService.MaxRetries,
		logger,
	)

	// Initialize services
	marketDataService := service.NewMarketDataService(marketDataRepo, symbolRepo, publisher, logger)
	timeframeService := service.NewTimeframeService(logger)
	backtestService := service.NewBacktestService(backtestClient, publisher, logger)

	// Initialize handlers
	marketDataHandler := handler.NewMarketDataHandler(marketDataService, logger)
	timeframeHandler := handler.NewTimeframeHandler(timeframeService, logger)
	backtestHandler := handler.NewBacktestHandler(backtestService, logger)

	cacheStore := connectToCache(cfg, logger)

	router := setupRouter(
		marketDataHandler,
		timeframeHandler,
		backtestHandler,
		cacheStore,
		readinessCheck(db, backtestClient),
		logger,
		cfg,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func createLogger(logging config.LoggingConfig) (*zap.Logger, error) {
	return loggerConfig(logging).Build()
}

func loggerConfig(logging config.LoggingConfig) zap.Config {
	zapLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	if err := zapLevel.UnmarshalText([]byte(logging.Level)); err != nil {
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	zapConfig := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	if logging.Format == "console" {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	return zapConfig
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

// connectToCache returns nil when caching is off or Redis is unreachable
func connectToCache(cfg *config.Config, logger *zap.Logger) middleware.ResponseStore {
	if !cfg.Cache.Enabled || cfg.Redis.Address == "" {
		return nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, response cache disabled",
			zap.String("address", cfg.Redis.Address),
			zap.Error(err))
		redisClient.Close()
		return nil
	}

	logger.Info("Response cache enabled", zap.String("address", cfg.Redis.Address))
	return middleware.NewRedisStore(redisClient)
}

// readinessCheck reports database and backtest engine reachability
func readinessCheck(db *sqlx.DB, backtestClient *client.BacktestClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		body := gin.H{"status": "ready", "database": "up", "backtest_engine": "up"}

		if err := db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "not_ready"
			body["database"] = "down"
		}

		if healthy, err := backtestClient.CheckHealth(ctx); err != nil || !healthy {
			body["backtest_engine"] = "down"
		}

		c.JSON(status, body)
	}
}

func setupRouter(
	marketDataHandler *handler.MarketDataHandler,
	timeframeHandler *handler.TimeframeHandler,
	backtestHandler *handler.BacktestHandler,
	cacheStore middleware.ResponseStore,
	readiness gin.HandlerFunc,
	logger *zap.Logger,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics())
		router.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/health/ready", readiness)

	cached := func(c *gin.Context) { c.Next() }
	if cacheStore != nil {
		cached = middleware.ResponseCache(cacheStore, middleware.CacheConfig{
			Enabled:         true,
			DefaultDuration: cfg.Cache.DefaultDuration,
			PrefixKey:       cfg.Cache.PrefixKey,
			ExcludedPaths:   cfg.Cache.ExcludedPaths,
		}, logger)
	}

	requireUser := func(c *gin.Context) { c.Next() }
	identifyUser := func(c *gin.Context) { c.Next() }
	if cfg.Auth.JWTSecret != "" {
		requireUser = middleware.AuthMiddleware(cfg.Auth.JWTSecret, logger)
		identifyUser = middleware.OptionalAuth(cfg.Auth.JWTSecret)
	} else {
		logger.Warn("auth.jwtSecret is not set, backtest routes are public")
	}

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Timeframe routes
		timeframes := v1.Group("/timeframes")
		{
			timeframes.GET("", cached, timeframeHandler.GetAllTimeframes)
			timeframes.GET("/validate/:timeframe", timeframeHandler.ValidateTimeframe)
			timeframes.POST("/range/validate", timeframeHandler.ValidateRange)
			timeframes.GET("/:timeframe/default-range", timeframeHandler.GetDefaultRange)
		}

		// Market data routes
		marketData := v1.Group("/market-data")
		marketData.Use(identifyUser)
		{
			marketData.GET("/candles", cached, marketDataHandler.GetCandles)
			marketData.GET("/availability", cached, marketDataHandler.GetDataAvailability)
		}

		// Backtest routes
		backtest := v1.Group("/backtest")
		backtest.Use(requireUser)
		{
			backtest.POST("/compare", backtestHandler.CompareStrategies)
		}

		// Service-to-service routes
		if cfg.Auth.ServiceKeyHash != "" {
			internal := v1.Group("/internal")
			internal.Use(middleware.ServiceAuthMiddleware(cfg.Auth.ServiceKeyHash, logger))
			{
				internal.GET("/market-data/candles", marketDataHandler.GetCandles)
				internal.GET("/market-data/availability", marketDataHandler.GetDataAvailability)
			}
		}
	}

	return router
}
