package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledgerstack/erp-core/internal/application"
	kafkaPub "github.com/ledgerstack/erp-core/internal/infrastructure/kafka"
	mongoRepo "github.com/ledgerstack/erp-core/internal/infrastructure/mongodb"
	"github.com/ledgerstack/erp-core/pkg/kafka"
	"github.com/ledgerstack/erp-core/pkg/logging"
	"github.com/ledgerstack/erp-core/pkg/metrics"
	"github.com/ledgerstack/erp-core/pkg/middleware"
	"github.com/ledgerstack/erp-core/pkg/mongodb"
	"github.com/ledgerstack/erp-core/pkg/resilience"
)

const serviceName = "erp-core"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting erp-core API")

	config := loadConfig()
	ctx := context.Background()

	m := metrics.New(metrics.DefaultConfig(serviceName))

	// The database may come up after the service in containerized deploys
	var mongoClient *mongodb.Client
	err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() error {
		var connectErr error
		mongoClient, connectErr = mongodb.NewClient(ctx, config.MongoDB)
		return connectErr
	})
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	producer := kafka.NewProducer(config.Kafka)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	breaker := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("kafka-publisher"), logger.Logger)
	publisher := kafkaPub.NewEventPublisher(producer, breaker, m, logger)

	db := mongoClient.Database()
	skuRepo := mongoRepo.NewSKURepository(db)
	subpartRepo := mongoRepo.NewSubpartRepository(db)
	productionRepo := mongoRepo.NewProductionEventRepository(db)
	ledgerRepo := mongoRepo.NewLedgerEntryRepository(db)
	quickRepo := mongoRepo.NewQuickEntryRepository(db)
	orderRepo := mongoRepo.NewOrderRepository(db)

	inventoryService := application.NewInventoryApplicationService(skuRepo, subpartRepo, productionRepo, publisher, logger)
	productionService := application.NewProductionApplicationService(productionRepo, subpartRepo, inventoryService, publisher, logger)
	ledgerService := application.NewLedgerApplicationService(ledgerRepo, quickRepo, publisher, logger)
	availabilityService := application.NewAvailabilityApplicationService(subpartRepo, skuRepo, logger)
	orderService := application.NewOrderApplicationService(orderRepo, publisher, logger)

	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")
	api.Use(requireOwner())
	{
		api.POST("/production", recordProductionHandler(productionService, m, logger))
		api.GET("/production", listProductionHandler(productionService, logger))

		api.POST("/subparts", createSubpartHandler(inventoryService, logger))
		api.GET("/subparts", listSubpartsHandler(inventoryService, logger))
		api.GET("/subparts/:id", getSubpartHandler(inventoryService, logger))
		api.PUT("/subparts/:id", updateSubpartHandler(inventoryService, logger))
		api.DELETE("/subparts/:id", deleteSubpartHandler(inventoryService, logger))

		api.POST("/skus", createSKUHandler(inventoryService, logger))
		api.GET("/skus", listSKUsHandler(inventoryService, logger))
		api.GET("/skus/staging", listStagingSKUsHandler(inventoryService, logger))
		api.GET("/skus/:id", getSKUHandler(inventoryService, logger))
		api.PUT("/skus/:id", updateSKUHandler(inventoryService, logger))
		api.DELETE("/skus/:id", deleteSKUHandler(inventoryService, logger))

		api.GET("/availability", getAvailabilityHandler(availabilityService, logger))

		api.POST("/ledger/invoices", postInvoiceHandler(ledgerService, m, logger))
		api.POST("/ledger/quick-entries", postQuickEntryHandler(ledgerService, m, logger))
		api.GET("/ledger/quick-entries", listQuickEntriesHandler(ledgerService, logger))
		api.GET("/ledger/statement", getStatementHandler(ledgerService, logger))
		api.GET("/ledger/outstanding", getOutstandingHandler(ledgerService, logger))
		api.GET("/ledger/outstanding/summary", getOutstandingSummaryHandler(ledgerService, logger))

		api.POST("/orders", createOrderHandler(orderService, m, logger))
		api.GET("/orders", listOrdersHandler(orderService, logger))
		api.GET("/orders/:id", getOrderHandler(orderService, logger))
		api.PATCH("/orders/:id/lines", updateOrderLineHandler(orderService, logger))
		api.DELETE("/orders/:id", deleteOrderHandler(orderService, logger))
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "erp_core"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
