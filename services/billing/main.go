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

	publisher := events.NewPublisher(os.Getenv("KAFKA_BROKER"))
	defer publisher.Close()

	svc := NewService(store.NewGorm(db), publisher)
	authMiddleware := middleware.NewAuthMiddleware()

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Billing service is healthy", nil)
	})

	payments := router.Group("/payments")
	payments.Use(authMiddleware.RequireAuth())
	{
		// Per-tenant routes allow the tenant's own users; the rest is
		// operator-only.
		tenant := payments.Group("/tenants/:tenant_id")
		tenant.Use(authMiddleware.RequireTenantAccess())
		{
			tenant.GET("", handlePaymentHistory(svc))
		}

		ops := payments.Group("")
		ops.Use(authMiddleware.RequireOperator())
		{
			ops.GET("", handleAllPayments(svc))
			ops.POST("/tenants/:tenant_id", handleRecordPayment(svc))
			ops.GET("/due-soon", handleDueSoon(svc))
			ops.POST("/reconcile", handleReconcile(svc))
		}
	}

	port := os.Getenv("BILLING_SERVICE_PORT")
	if port == "" {
		port = "8003"
	}

	logrus.Infof("Billing service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start billing service:", err)
	}
}
