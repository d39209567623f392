package router

import (
	"time"

	"github.com/boltspazor/MR-Dmak-sub002/internal/config"
	"github.com/boltspazor/MR-Dmak-sub002/internal/handlers"
	"github.com/boltspazor/MR-Dmak-sub002/internal/middleware"
	"github.com/boltspazor/MR-Dmak-sub002/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin router with campaign, recipient, webhook
// and progress routes
func SetupRouter(db *gorm.DB, rabbitMQService *services.RabbitMQService) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	// Create a new router
	r := gin.New()

	// Use middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Create middleware with services
	bearerTokenMiddleware := middleware.NewBearerTokenMiddleware(config.GetJWTSecret())

	// Create handlers with services
	contactHandler := handlers.NewContactHandler(db)
	templateHandler := handlers.NewTemplateHandler(db)
	recipientListHandler := handlers.NewRecipientListHandler(db)
	campaignHandler := handlers.NewCampaignHandler(db, rabbitMQService)
	webhookHandler := handlers.NewWebhookHandler(db, config.GetWebhookVerifyToken())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})

		// Provider webhooks (public: the provider authenticates through
		// the verification handshake, not bearer tokens)
		webhooks := api.Group("/webhooks")
		{
			webhooks.GET("/whatsapp", webhookHandler.Verify)
			webhooks.POST("/whatsapp", webhookHandler.Receive)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(bearerTokenMiddleware.BearerTokenAuthMiddleware())
		{
			// Contact registry + consent seam
			contacts := protected.Group("/contacts")
			{
				contacts.POST("", contactHandler.CreateContact)
				contacts.GET("", contactHandler.ListContacts)
				contacts.POST("/consent", contactHandler.UpsertConsent)
			}

			// Template routes
			templates := protected.Group("/templates")
			{
				templates.POST("", templateHandler.CreateTemplate)
				templates.GET("", templateHandler.ListTemplates)
				templates.GET("/:id", templateHandler.GetTemplate)
			}

			// Recipient list routes
			lists := protected.Group("/recipient-lists")
			{
				lists.POST("", recipientListHandler.CreateRecipientList)
				lists.GET("/:id", recipientListHandler.GetRecipientList)
			}

			// Campaign routes
			campaigns := protected.Group("/campaigns")
			{
				campaigns.POST("", campaignHandler.CreateCampaign)
				campaigns.GET("", campaignHandler.ListCampaigns)
				campaigns.GET("/:id", campaignHandler.GetCampaign)
				campaigns.POST("/:id/send", campaignHandler.SendCampaign)
				campaigns.POST("/:id/cancel", campaignHandler.CancelCampaign)
				campaigns.GET("/:id/progress", campaignHandler.GetCampaignProgress)
			}
		}
	}

	return r
}
