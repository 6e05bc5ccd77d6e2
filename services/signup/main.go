package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/storeops/retail-platform/shared/config"
	"github.com/storeops/retail-platform/shared/credentials"
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

	creds, err := credentials.NewCognito()
	if err != nil {
		log.Fatal("Failed to initialize credential provider:", err)
	}

	publisher := events.NewPublisher(os.Getenv("KAFKA_BROKER"))
	defer publisher.Close()

	svc := NewService(store.NewGorm(db), creds, publisher)
	authMiddleware := middleware.NewAuthMiddleware()

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Signup service is healthy", nil)
	})

	signup := router.Group("/signup")
	{
		// Submission is public; review is operator-only
		signup.POST("/requests", handleSubmitRequest(svc))

		review := signup.Group("/requests")
		review.Use(authMiddleware.RequireAuth(), authMiddleware.RequireOperator())
		{
			review.GET("", handleListRequests(svc))
			review.POST("/:id/approve", handleApproveRequest(svc))
			review.POST("/:id/reject", handleRejectRequest(svc))
		}
	}

	port := os.Getenv("SIGNUP_SERVICE_PORT")
	if port == "" {
		port = "8001"
	}

	logrus.Infof("Signup service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start signup service:", err)
	}
}
