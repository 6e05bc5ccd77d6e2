package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/storeops/retail-platform/shared/middleware"
	"github.com/storeops/retail-platform/shared/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	serviceClients := &ServiceClients{
		SignupService:  NewServiceClient(os.Getenv("SIGNUP_SERVICE_URL")),
		TenantService:  NewServiceClient(os.Getenv("TENANT_SERVICE_URL")),
		BillingService: NewServiceClient(os.Getenv("BILLING_SERVICE_URL")),
		BackupService:  NewServiceClient(os.Getenv("BACKUP_SERVICE_URL")),
	}

	authMiddleware := middleware.NewAuthMiddleware()

	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "API Gateway is healthy", nil)
	})

	router.GET("/status", func(c *gin.Context) {
		utils.OKResponse(c, "Service status", serviceClients.GetServiceStatus())
	})

	// Signup workflow: submission is public, review is operator-only
	signup := router.Group("/signup")
	{
		signup.POST("/requests", serviceClients.SignupService.ProxyRequest)

		review := signup.Group("/requests")
		review.Use(authMiddleware.RequireAuth(), authMiddleware.RequireOperator())
		{
			review.GET("", serviceClients.SignupService.ProxyRequest)
			review.POST("/:id/approve", serviceClients.SignupService.ProxyRequest)
			review.POST("/:id/reject", serviceClients.SignupService.ProxyRequest)
		}
	}

	// Feature catalog is readable without a token
	router.GET("/features/catalog", serviceClients.TenantService.ProxyRequest)

	// Tenant administration and entitlement mutations
	tenants := router.Group("/tenants")
	tenants.Use(authMiddleware.RequireAuth())
	{
		tenants.GET("/:id", authMiddleware.RequireTenantAccess(), serviceClients.TenantService.ProxyRequest)

		ops := tenants.Group("")
		ops.Use(authMiddleware.RequireOperator())
		{
			ops.GET("", serviceClients.TenantService.ProxyRequest)
			ops.PUT("/:id/status", serviceClients.TenantService.ProxyRequest)
			ops.POST("/:id/features/enable", serviceClients.TenantService.ProxyRequest)
			ops.POST("/:id/features/disable", serviceClients.TenantService.ProxyRequest)
			ops.POST("/bulk/features", serviceClients.TenantService.ProxyRequest)
		}
	}

	// Payment ledger
	payments := router.Group("/payments")
	payments.Use(authMiddleware.RequireAuth())
	{
		payments.GET("/tenants/:tenant_id", authMiddleware.RequireTenantAccess(), serviceClients.BillingService.ProxyRequest)

		ops := payments.Group("")
		ops.Use(authMiddleware.RequireOperator())
		{
			ops.GET("", serviceClients.BillingService.ProxyRequest)
			ops.POST("/tenants/:tenant_id", serviceClients.BillingService.ProxyRequest)
			ops.GET("/due-soon", serviceClients.BillingService.ProxyRequest)
			ops.POST("/reconcile", serviceClients.BillingService.ProxyRequest)
		}
	}

	// Backup and restore
	backups := router.Group("/backups")
	backups.Use(authMiddleware.RequireAuth())
	{
		backups.GET("", authMiddleware.RequireOperator(), serviceClients.BackupService.ProxyRequest)

		tenant := backups.Group("/tenants/:tenant_id")
		tenant.Use(authMiddleware.RequireTenantAccess())
		{
			tenant.POST("", serviceClients.BackupService.ProxyRequest)
			tenant.GET("", serviceClients.BackupService.ProxyRequest)
			tenant.POST("/restore", serviceClients.BackupService.ProxyRequest)
		}
	}

	port := os.Getenv("API_GATEWAY_PORT")
	if port == "" {
		port = "8080"
	}

	logrus.Infof("API Gateway starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start API Gateway:", err)
	}
}
