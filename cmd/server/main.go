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

	"github.com/boltspazor/MR-Dmak-sub002/internal/config"
	"github.com/boltspazor/MR-Dmak-sub002/internal/database"
	"github.com/boltspazor/MR-Dmak-sub002/internal/database/repository"
	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
	"github.com/boltspazor/MR-Dmak-sub002/internal/router"
	"github.com/boltspazor/MR-Dmak-sub002/internal/services"
	"github.com/boltspazor/MR-Dmak-sub002/internal/utils"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	// Import Swagger docs
	_ "github.com/boltspazor/MR-Dmak-sub002/docs"
)

// @title Campaign Dispatch API
// @version 1.0
// @description Marketing-contact campaign dispatch and delivery tracking service

// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter `Bearer ` followed by your JWT token (e.g. "Bearer <token>")

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
		logrus.Warnf("Failed to initialize RabbitMQ, campaign submission disabled: %v", err)
		rabbitMQService = nil
	} else {
		defer rabbitMQService.Close()

		// Run the dispatch consumer in-process unless a dedicated worker
		// handles the queue
		if getEnv("RUN_DISPATCHER", "true") == "true" {
			campaignRepo := repository.NewCampaignRepository(db)
			listRepo := repository.NewRecipientListRepository(db)
			recordRepo := repository.NewMessageRecordRepository(db)
			provider := services.NewWhatsAppClient(config.GetProviderConfig())
			dispatcher := services.NewDispatcher(campaignRepo, listRepo, recordRepo, provider, config.GetDispatchConfig())

			dispatchCtx, dispatchCancel := context.WithCancel(context.Background())
			defer dispatchCancel()

			err := rabbitMQService.StartDispatchConsumer(func(job models.DispatchJob) error {
				return dispatcher.Dispatch(dispatchCtx, job.CampaignID)
			})
			if err != nil {
				logrus.Warnf("Failed to start dispatch consumer: %v", err)
			} else {
				logrus.Info("Dispatch consumer started")
				defer rabbitMQService.StopDispatchConsumer()
			}
		}
	}

	// Initialize router with RabbitMQ service
	r := router.SetupRouter(db, rabbitMQService)

	// Configure HTTP server
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logrus.Infof("Server starting on port %s", port)
		logrus.Infof("API Health Check: http://localhost:%s/api/v1/health", port)
		logrus.Infof("Swagger UI: http://localhost:%s/swagger/index.html", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown the server
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited properly")
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
