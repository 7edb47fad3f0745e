package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"live_stream_service/internal/upload/api/handlers"
	"live_stream_service/internal/upload/api/router"
	"live_stream_service/internal/upload/app"
	"live_stream_service/internal/video/domain"
	"live_stream_service/internal/video/repository"
	"live_stream_service/pkg/config"
	"live_stream_service/pkg/database"
	"live_stream_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.UploadService, config.EnvConfig.UploadServiceLogPath)
	defer logger.Log.Sync()

	cfg := config.LoadConfig[config.UploadService](config.EnvConfig.UploadService, config.EnvConfig.UploadServiceYAMLPath)

	// 1. PostgreSQL
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.PostgreSQL.Host, cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Database, cfg.PostgreSQL.Port)
	db, err := database.NewPGConnection(database.Connection{
		ConnectStr:    dsn,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", dsn)), zap.Error(err))
	}

	videoRepo := repository.NewVideoRepo(db)
	if err := videoRepo.AutoMigrate(); err != nil {
		logger.Log.Fatal("video table migration failed", zap.Error(err))
	}

	// 2. MinIO
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
	if err := minioClient.EnsureBucket(context.Background(), domain.RawBucket); err != nil {
		logger.Log.Fatal("ensure raw bucket failed", zap.Error(err))
	}

	// 3. RabbitMQ
	rabbitConn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr:    cfg.RabbitMQ.URL,
		RetryCount:    cfg.RabbitMQ.RetryCount,
		RetryInterval: time.Duration(cfg.RabbitMQ.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("Unable to connect to RabbitMQ after retries", zap.Error(err))
	}
	defer rabbitConn.Close()

	rabbitChannel, err := database.GetRabbitMQChannelWithRetry(rabbitConn, cfg.RabbitMQ.RetryCount,
		time.Duration(cfg.RabbitMQ.RetryInterval))
	if err != nil {
		logger.Log.Fatal("Unable to open RabbitMQ channel after retries", zap.Error(err))
	}
	defer rabbitChannel.Close()

	rabbitRepo := database.NewRabbitRepository(rabbitChannel)
	if err := rabbitRepo.DeclareDurableQueue(domain.QueueName); err != nil {
		logger.Log.Fatal("declare transcode queue failed", zap.Error(err))
	}

	usecase := app.NewUploadUseCase(minioClient, videoRepo, rabbitRepo)
	videoHandler := handlers.NewVideoHandler(usecase)

	r := fiber.New(fiber.Config{
		BodyLimit: 1024 * 1024 * 1024, // raw uploads can be large
	})

	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.UploadServiceLogPath),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r, videoHandler)

	logger.Log.Info("upload service listening", zap.String("port", cfg.Port))
	if err := r.Listen(":" + cfg.Port); err != nil {
		logger.Log.Fatal("upload service stopped", zap.Error(err))
	}
}
