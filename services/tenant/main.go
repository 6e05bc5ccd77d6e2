package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/storeops/retail-platform/shared/cache"
	"github.com/storeops/retail-platform/shared/config"
	"github.com/storeops/retail-platform/shared/events"
	"github.com/storeops/retail-platform/shared/middleware"
	"github.com/storeops/retail-platform/shared/store"
	"github.com/storeops/retail-platform/shared/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := store.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	var featureCache FeatureCache
	if sessions, err := cache.New(); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, feature propagation falls back to events only")
	} else {
		featureCache = sessions
		defer sessions.Close()
	}

	publisher := events.NewPublisher(os.Getenv("KAFKA_BROKER"))
	defer publisher.Close()

	svc := NewService(store.NewGorm(db), featureCache, publisher)
	authMiddleware := middleware.NewAuthMiddleware()

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Tenant service is healthy", nil)
	})

	router.GET("/features/catalog", handleFeatureCatalog())

	tenants := router.Group("/tenants")
	tenants.Use(authMiddleware.RequireAuth())
	{
		tenants.GET("/:id", authMiddleware.RequireTenantAccess(), handleGetTenant(svc))

		ops := tenants.Group("")
		ops.Use(authMiddleware.RequireOperator())
		{
			ops.GET("", handleListTenants(svc))
			ops.PUT("/:id/status", handleSetStatus(svc))
			ops.POST("/:id/features/enable", handleEnableFeature(svc))
			ops.POST("/:id/features/disable", handleDisableFeature(svc))
			ops.POST("/bulk/features", handleBulkUpdate(svc))
		}
	}

	port := os.Getenv("TENANT_SERVICE_PORT")
	if port == "" {
		port = "8002"
	}

	logrus.Infof("Tenant service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start tenant service:", err)
	}
}
