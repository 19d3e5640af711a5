// internal/router/router.go
package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ranksight/ranksight-backend/internal/catalog"
	"github.com/ranksight/ranksight-backend/internal/config"
	"github.com/ranksight/ranksight-backend/internal/handlers"
	"github.com/ranksight/ranksight-backend/internal/middleware"
	"github.com/ranksight/ranksight-backend/internal/plans"
	"github.com/ranksight/ranksight-backend/internal/platform"
	"github.com/ranksight/ranksight-backend/internal/services"
	"github.com/ranksight/ranksight-backend/internal/utils"
)

func Initialize(db *gorm.DB, redisClient *redis.Client, planTable *plans.Table, cfg *config.Config) *gin.Engine {
	// Initialize services
	source := catalog.NewShopifySource(
		time.Duration(cfg.Shopify.RequestTimeout)*time.Second,
		cfg.Shopify.APIVersion,
	)
	registry := platform.NewRegistryFromCredentials(
		cfg.Platforms.Credentials,
		time.Duration(cfg.Platforms.RequestTimeout)*time.Second,
	)

	quotaService := services.NewQuotaService(db, planTable)
	shopService := services.NewShopService(db)
	auditService := services.NewAuditService(db, source, planTable, cfg.Shopify.PageSize)
	visibilityService := services.NewVisibilityService(db, registry, quotaService, cfg.IsDevelopment())
	analyticsService := services.NewAnalyticsService(db)
	competitorService := services.NewCompetitorService(db, quotaService)
	billingService := services.NewBillingService(db, cfg)
	exportService, err := services.NewExportService(db, cfg)
	if err != nil {
		logrus.WithError(err).Warn("S3 export disabled")
	}

	// Initialize handlers
	shopHandler := handlers.NewShopHandler(shopService, quotaService, cfg.JWT.AccessTokenTTL)
	auditHandler := handlers.NewAuditHandler(auditService)
	visibilityHandler := handlers.NewVisibilityHandler(visibilityService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, competitorService)
	competitorHandler := handlers.NewCompetitorHandler(competitorService, shopService)
	exportHandler := handlers.NewExportHandler(exportService)
	billingHandler := handlers.NewBillingHandler(billingService, shopService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit(redisClient))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Shop onboarding and billing webhooks are the only public routes.
		shops := v1.Group("/shops")
		{
			shops.POST("/register", shopHandler.Register)

			me := shops.Group("/me")
			me.Use(middleware.AuthRequired(db))
			{
				me.GET("", shopHandler.GetShop)
				me.PUT("", shopHandler.UpdateShop)
				me.DELETE("", shopHandler.Uninstall)
				me.GET("/quota", shopHandler.GetQuota)
				me.POST("/token", shopHandler.CreateSessionToken)
			}
		}

		audits := v1.Group("/audits")
		audits.Use(middleware.AuthRequired(db))
		{
			audits.POST("/run", middleware.AuditRateLimit(redisClient), auditHandler.RunAudit)
			audits.GET("/summary", auditHandler.GetSummary)
			audits.GET("/products", auditHandler.ListProducts)
			audits.POST("/products/:product_id", auditHandler.AuditProduct)
			audits.GET("/export", exportHandler.ExportAudits)
		}

		visibility := v1.Group("/visibility")
		visibility.Use(middleware.AuthRequired(db))
		{
			visibility.POST("/run", middleware.VisibilityRateLimit(redisClient), visibilityHandler.RunCheck)
			visibility.GET("/history", visibilityHandler.GetHistory)
		}

		analytics := v1.Group("/analytics")
		analytics.Use(middleware.AuthRequired(db))
		{
			analytics.GET("/trends", analyticsHandler.GetTrends)
			analytics.GET("/share-of-voice", analyticsHandler.GetShareOfVoice)
			analytics.GET("/positions", analyticsHandler.GetPositions)
		}

		competitors := v1.Group("/competitors")
		competitors.Use(middleware.AuthRequired(db))
		{
			competitors.POST("", competitorHandler.AddCompetitor)
			competitors.GET("", competitorHandler.ListCompetitors)
			competitors.DELETE("/:id", competitorHandler.RemoveCompetitor)
		}

		billing := v1.Group("/billing")
		{
			billing.POST("/checkout", middleware.AuthRequired(db), billingHandler.CreateCheckout)
			billing.POST("/webhook", billingHandler.Webhook)
		}
	}

	return r
}
