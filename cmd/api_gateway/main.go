package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"live_stream_service/internal/gateway/handlers"
	"live_stream_service/internal/gateway/router"
	"live_stream_service/pkg/config"
	"live_stream_service/pkg/database"
	"live_stream_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.APIGateway, config.EnvConfig.APIGatewayLogPath)
	defer logger.Log.Sync()

	cfg := config.LoadConfig[config.APIGateway](config.EnvConfig.APIGateway, config.EnvConfig.APIGatewayYAMLPath)

	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:      cfg.MinIO.Endpoint,
		User:          cfg.MinIO.User,
		Password:      cfg.MinIO.Password,
		UseSSL:        cfg.MinIO.UseSSL,
		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to MinIO after retries", zap.Error(err))
	}

	uploadServiceURL := fmt.Sprintf("http://%s:%s", cfg.UploadService.IP, cfg.UploadService.Port)
	gatewayHandler := handlers.NewGatewayHandler(minioClient, uploadServiceURL)

	r := fiber.New(fiber.Config{
		BodyLimit: 1024 * 1024 * 1024,
	})

	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.APIGatewayLogPath),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, gatewayHandler)

	logger.Log.Info("api gateway listening", zap.String("port", cfg.Port))
	if err := r.Listen(":" + cfg.Port); err != nil {
		logger.Log.Fatal("api gateway stopped", zap.Error(err))
	}
}
