package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/verimetr/verimetr-api/internal/config"
	"github.com/verimetr/verimetr-api/internal/repository/postgres"
	"github.com/verimetr/verimetr-api/internal/service/queue"
	"github.com/verimetr/verimetr-api/internal/service/storage"
	"github.com/verimetr/verimetr-api/internal/worker"
	"github.com/verimetr/verimetr-api/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	appLogger := logger.NewLogger(os.Getenv("APP_ENV"))

	dbConnections, err := config.NewDatabaseConnections()
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer dbConnections.Close()

	s3Config := config.DefaultS3Config()
	s3Client, err := s3Config.GetClient(context.Background())
	if err != nil {
		appLogger.Fatal("Failed to connect to S3", err)
	}

	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	repo := postgres.NewPostgresRepository(dbConnections)
	documentStore := storage.NewDocumentStore(s3Client, s3Config)

	docsWorker := worker.NewDocsWorker(
		sqsService,
		repo,
		documentStore,
		appLogger,
		2,
		5*time.Second,
	)

	docsWorker.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	docsWorker.Stop()
	appLogger.Sync()
}
