package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/storeops/retail-platform/shared/config"
	"github.com/storeops/retail-platform/shared/events"
	"github.com/storeops/retail-platform/shared/middleware"
	"github.com/storeops/retail-platform/shared/storage"
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

	blobs, err := storage.NewS3(os.Getenv("BACKUP_BUCKET"))
	if err != nil {
		log.Fatal("Failed to initialize blob storage:", err)
	}

	publisher := events.NewPublisher(os.Getenv("KAFKA_BROKER"))
	defer publisher.Close()

	svc := NewService(store.NewGorm(db), blobs, publisher)
	authMiddleware := middleware.NewAuthMiddleware()

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Backup service is healthy", nil)
	})

	backups := router.Group("/backups")
	backups.Use(authMiddleware.RequireAuth())
	{
		backups.GET("", authMiddleware.RequireOperator(), handleAllBackups(svc))

		tenant := backups.Group("/tenants/:tenant_id")
		tenant.Use(authMiddleware.RequireTenantAccess())
		{
			tenant.POST("", handleTriggerBackup(svc))
			tenant.GET("", handleBackupHistory(svc))
			tenant.POST("/restore", handleRestore(svc))
		}
	}

	port := os.Getenv("BACKUP_SERVICE_PORT")
	if port == "" {
		port = "8004"
	}

	logrus.Infof("Backup service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start backup service:", err)
	}
}
