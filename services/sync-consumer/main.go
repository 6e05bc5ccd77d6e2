package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/storeops/retail-platform/shared/cache"
	"github.com/storeops/retail-platform/shared/config"
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
	if err := db.AutoMigrate(&FailedSync{}); err != nil {
		log.Fatal("Failed to migrate failed sync table:", err)
	}

	entitlements, err := cache.New()
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer entitlements.Close()

	consumer := NewConsumer(os.Getenv("KAFKA_BROKER"), db, entitlements)
	defer consumer.Close()

	retrier := NewRetrier(db, entitlements)

	go consumer.Run()
	go retrier.Run()

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Sync consumer is healthy", nil)
	})

	router.GET("/stats", func(c *gin.Context) {
		utils.OKResponse(c, "Sync retry statistics", retrier.Stats())
	})

	port := os.Getenv("SYNC_CONSUMER_PORT")
	if port == "" {
		port = "8005"
	}

	logrus.Infof("Sync consumer starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start sync consumer:", err)
	}
}
