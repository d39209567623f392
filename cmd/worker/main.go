package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/boltspazor/MR-Dmak-sub002/internal/config"
	"github.com/boltspazor/MR-Dmak-sub002/internal/database"
	"github.com/boltspazor/MR-Dmak-sub002/internal/database/repository"
	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
	"github.com/boltspazor/MR-Dmak-sub002/internal/services"
	"github.com/boltspazor/MR-Dmak-sub002/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Standalone dispatch worker. Runs the campaign dispatch consumer without
// the HTTP API, for deployments that scale sending separately from serving.
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Configure logging
	configureLogging()

	// Initialize Sentry
	utils.InitSentry()

	// Initialize database connection
	db, err := database.InitDB()
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize RabbitMQ service
	rabbitMQService, err := services.NewRabbitMQService()
	if err != nil {
		logrus.Fatalf("Failed to initialize RabbitMQ: %v", err)
	}
	defer rabbitMQService.Close()

	// Build the dispatcher
	campaignRepo := repository.NewCampaignRepository(db)
	listRepo := repository.NewRecipientListRepository(db)
	recordRepo := repository.NewMessageRecordRepository(db)
	provider := services.NewWhatsAppClient(config.GetProviderConfig())
	dispatcher := services.NewDispatcher(campaignRepo, listRepo, recordRepo, provider, config.GetDispatchConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rabbitMQService.StartDispatchConsumer(func(job models.DispatchJob) error {
		return dispatcher.Dispatch(ctx, job.CampaignID)
	}); err != nil {
		logrus.Fatalf("Failed to start dispatch consumer: %v", err)
	}
	logrus.Info("Dispatch worker started")

	// Wait for interrupt signal to shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down worker...")

	cancel()
	rabbitMQService.StopDispatchConsumer()

	logrus.Info("Worker exited properly")
}

func configureLogging() {
	logLevel := getEnv("LOG_LEVEL", "info")
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
