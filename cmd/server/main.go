package main

import (
	"context"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/igestorphone/igestorphone-sub000/internal/extraction"
	"github.com/igestorphone/igestorphone-sub000/internal/handler"
	"github.com/igestorphone/igestorphone-sub000/internal/ingest"
	mid "github.com/igestorphone/igestorphone-sub000/internal/middleware"
	"github.com/igestorphone/igestorphone-sub000/internal/model"
	"github.com/igestorphone/igestorphone-sub000/pkg/config"
	"github.com/igestorphone/igestorphone-sub000/pkg/database"
	"github.com/igestorphone/igestorphone-sub000/pkg/jwtutil"
	"github.com/igestorphone/igestorphone-sub000/pkg/logger"
	"github.com/igestorphone/igestorphone-sub000/prometheus"
)

func main() {
	// Load .env file; fall back to real environment variables when absent
	_ = godotenv.Load()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting catalog service", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(
		&model.Supplier{},
		&model.Product{},
		&model.PriceHistory{},
		&model.RawListSnapshot{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Ingestion pipeline, extraction collaborator and passive-channel queue
	pipeline := ingest.NewPipeline(database.GetDB(), log)
	extractor := extraction.NewOpenAIExtractor(&appConfig.Extraction, log)
	queue := ingest.NewQueue(appConfig.Queue.Capacity, appConfig.Queue.Cooldown, extractor, pipeline, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	queue.Start(ctx)

	ingestHandler := handler.NewIngestHandler(pipeline, extractor)
	webhookHandler := handler.NewWebhookHandler(queue, &appConfig.Webhook)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomw.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Passive-channel webhook (secret-checked, not JWT)
	e.POST("/webhook/price-list", webhookHandler.Receive)

	// Ingestion API
	api := e.Group("/api", mid.AuthMiddleware)
	api.POST("/ingest", ingestHandler.Ingest)

	// Supplier API
	api.GET("/suppliers", handler.ListSuppliers)
	api.GET("/suppliers/:id", handler.GetSupplier)
	api.POST("/suppliers", handler.CreateSupplier)
	api.PUT("/suppliers/:id", handler.UpdateSupplier)
	api.DELETE("/suppliers/:id", handler.DeactivateSupplier)

	// Catalog API
	api.GET("/products", handler.ListProducts)
	api.GET("/products/:id", handler.GetProduct)
	api.GET("/products/:id/price-history", handler.GetPriceHistory)
	api.POST("/price-history/prune", handler.PrunePriceHistory)
	api.GET("/audit-logs", handler.ListAuditLogs)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server error", zap.Error(err))
	}
}
