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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/verimetr/verimetr-api/docs"
	"github.com/verimetr/verimetr-api/internal/api"
	"github.com/verimetr/verimetr-api/internal/config"
	"github.com/verimetr/verimetr-api/internal/metrics"
	"github.com/verimetr/verimetr-api/internal/middleware"
	"github.com/verimetr/verimetr-api/internal/repository/postgres"
	"github.com/verimetr/verimetr-api/internal/service"
	"github.com/verimetr/verimetr-api/internal/service/queue"
	"github.com/verimetr/verimetr-api/internal/service/session"
	"github.com/verimetr/verimetr-api/internal/service/storage"
	"github.com/verimetr/verimetr-api/internal/service/tariffcache"
	"github.com/verimetr/verimetr-api/pkg/logger"
)

// @title           Verimetr Swagger API
// @version         1.0
// @description     Multi-tenant metrology platform with tariff-based usage limits.

// @host      localhost:10000
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @externalDocs.description  OpenAPI
// @externalDocs.url          https://swagger.io/resources/open-api/
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Initialize logger
	appLogger := logger.NewLogger(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		appLogger.Fatal("Failed to load config", err)
	}

	dbConnections, err := config.NewDatabaseConnections()
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer dbConnections.Close()

	appLogger.Info("Database connections established - writer and reader connected")

	// Initialize Redis
	redisConfig := config.DefaultRedisConfig()
	redisClient, err := redisConfig.GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()

	// Initialize S3
	s3Config := config.DefaultS3Config()
	s3Client, err := s3Config.GetClient(context.Background())
	if err != nil {
		appLogger.Fatal("Failed to connect to S3", err)
	}
	documentStore := storage.NewDocumentStore(s3Client, s3Config)

	// Initialize SQS
	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	metrics.Init()

	repo := postgres.NewPostgresRepository(dbConnections)

	// Initialize services
	limitCache := tariffcache.NewCache(redisClient, cfg.QuotaCacheTTL, appLogger)
	quotaService := service.NewQuotaService(repo, limitCache, appLogger)
	sessions := session.NewVersioner(redisClient)

	tariffService := service.NewTariffService(repo, limitCache, appLogger)
	companyService := service.NewCompanyService(repo, limitCache, appLogger)
	employeeService := service.NewEmployeeService(repo, quotaService, appLogger)
	orderService := service.NewOrderService(repo, quotaService, appLogger)
	verificationService := service.NewVerificationService(repo, quotaService, sqsService, documentStore, appLogger)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg, sessions)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(redisClient, cfg, repo.Company(), appLogger)

	authService := service.NewAuthService(repo, sessions, authMiddleware, appLogger)

	// Initialize server
	server := api.NewServer(
		authService,
		companyService,
		employeeService,
		orderService,
		verificationService,
		tariffService,
		quotaService,
		authMiddleware,
		rateLimitMiddleware,
	)

	// Initialize router
	router := gin.Default()

	// Swagger documentation endpoint
	docs.SwaggerInfo.Title = "Verimetr API"
	docs.SwaggerInfo.Description = "Multi-tenant metrology platform with tariff-based usage limits"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.ServerPort)
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http"}

	// Swagger UI endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Setup API routes
	apiGroup := router.Group("/api/v1")
	server.SetupRoutes(apiGroup)

	// Start server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	// Shutdown the HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server exiting")
	appLogger.Sync()
}
