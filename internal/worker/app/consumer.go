package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"live_stream_service/internal/video/domain"
	"live_stream_service/internal/video/repository"
	"live_stream_service/pkg/database"
	"live_stream_service/pkg/logger"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Consumer drives the per-job pipeline: download the raw upload, transcode
// it to HLS, push the output to the processed bucket and finalize the
// status record. One delivery is in flight per consumer at any time.
type Consumer struct {
	rabbitChannel database.RabbitRepo
	minioClient   database.MinIOClientRepo
	videoRepo     repository.VideoRepo
	queueName     string
	ffmpegTimeout time.Duration
}

// NewConsumer create Consumer instance
func NewConsumer(rabbitChannel database.RabbitRepo,
	minioClient database.MinIOClientRepo,
	videoRepo repository.VideoRepo,
	queueName string,
	ffmpegTimeout time.Duration,
) *Consumer {
	return &Consumer{
		rabbitChannel: rabbitChannel,
		minioClient:   minioClient,
		videoRepo:     videoRepo,
		queueName:     queueName,
		ffmpegTimeout: ffmpegTimeout,
	}
}

// test seams
var (
	mkdirTemp = os.MkdirTemp

	removeAll = os.RemoveAll

	createDir = func(path string) error {
		return os.MkdirAll(path, 0755)
	}

	readOutputDir = os.ReadDir

	transcodeToHLS = TranscodeToHLS
)

// Start declares the durable queue, caps the channel at one unacked
// delivery, then consumes until ctx is cancelled or the channel closes.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.rabbitChannel.DeclareDurableQueue(c.queueName); err != nil {
		return fmt.Errorf("declare queue [%s] failed: %w", c.queueName, err)
	}

	// prefetch 1: scaling is adding worker processes, not widening this one
	if err := c.rabbitChannel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set channel QoS failed: %w", err)
	}

	msgs, err := c.rabbitChannel.Consume(
		c.queueName,
		"",    // consumer tag assigned by the broker
		false, // manual ack
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume queue [%s] failed: %w", c.queueName, err)
	}

	logger.Log.Info("consumer started, waiting for transcode jobs",
		zap.String("queue", c.queueName))

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				logger.Log.Warn("RabbitMQ consume channel closed")
				return nil
			}
			c.HandleDelivery(ctx, d)
		case <-ctx.Done():
			logger.Log.Info("consumer received stop signal")
			return nil
		}
	}
}

// HandleDelivery runs one job to a terminal state and answers the broker.
// The status record is always written before the ack or nack, so a crash
// in between only risks a redelivery, never a lost result.
func (c *Consumer) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	// The stop signal only stops fetching further deliveries. A job that is
	// already dequeued runs to its terminal state, so a restart never
	// finalizes a healthy video as FAILED mid-transcode.
	ctx = context.WithoutCancel(ctx)

	job, err := domain.DecodeTranscodeJob(d.Body)
	if err != nil {
		logger.Log.Errorf("invalid transcode job payload, dropping message", err)
		c.nackDrop(d)
		return
	}

	video, err := c.videoRepo.GetByID(job.VideoID)
	if err != nil {
		// nothing to finalize without a record
		logger.Log.Errorf(fmt.Sprintf("videoID[%s] lookup failed, dropping message", job.VideoID), err)
		c.nackDrop(d)
		return
	}

	if video.Status.Terminal() {
		// redelivery after a crash between finalize and ack
		logger.Log.Warn("video already finalized, acking duplicate delivery",
			zap.String("videoID", video.ID), zap.String("status", string(video.Status)))
		c.ack(d)
		return
	}

	if err := c.processVideo(ctx, video); err != nil {
		logger.Log.Errorf(fmt.Sprintf("videoID[%s] transcode pipeline failed", video.ID), err)
		c.markFailed(video)
		c.nackDrop(d)
		return
	}

	c.ack(d)
	logger.Log.Info("transcode job completed", zap.String("videoID", video.ID))
}

// processVideo download, transcode, upload, finalize. The scratch directory
// is removed on every exit path.
func (c *Consumer) processVideo(ctx context.Context, video *domain.Video) error {
	if err := c.minioClient.EnsureBucket(ctx, domain.ProcessedBucket); err != nil {
		return fmt.Errorf("ensure processed bucket failed: %w", err)
	}

	workDir, err := mkdirTemp("", fmt.Sprintf("video-worker-%s-", video.ID))
	if err != nil {
		return fmt.Errorf("create scratch directory failed: %w", err)
	}
	defer func() {
		if err := removeAll(workDir); err != nil {
			logger.Log.Warn("scratch directory cleanup failed",
				zap.String("workDir", workDir), zap.Error(err))
		}
	}()

	inputPath := filepath.Join(workDir, filepath.Base(video.StorageKey))
	outputDir := filepath.Join(workDir, "hls")
	if err := createDir(outputDir); err != nil {
		return fmt.Errorf("create output directory failed: %w", err)
	}

	logger.Log.Info("downloading raw video",
		zap.String("videoID", video.ID), zap.String("storageKey", video.StorageKey))
	if err := c.minioClient.DownloadFile(ctx, domain.RawBucket, video.StorageKey, inputPath); err != nil {
		return fmt.Errorf("download raw video failed: %w", err)
	}

	logger.Log.Info("transcoding to HLS", zap.String("videoID", video.ID))
	if err := transcodeToHLS(ctx, inputPath, outputDir, c.ffmpegTimeout); err != nil {
		return fmt.Errorf("FFmpeg HLS transcode failed: %w", err)
	}

	files, err := readOutputDir(outputDir)
	if err != nil {
		return fmt.Errorf("read transcode output directory failed: %w", err)
	}
	for _, file := range files {
		localFilePath := filepath.Join(outputDir, file.Name())
		objectName := fmt.Sprintf("%s/%s", video.ID, file.Name())
		if err := c.minioClient.UploadFile(ctx, domain.ProcessedBucket, objectName,
			localFilePath, domain.ContentTypeFor(file.Name())); err != nil {
			return fmt.Errorf("upload transcode output [%s] failed: %w", objectName, err)
		}
	}

	hlsPath := fmt.Sprintf("%s/%s", video.ID, domain.ManifestFileName)
	video.Status = domain.VideoCompleted
	video.HLSPath = &hlsPath
	if err := c.videoRepo.Update(video); err != nil {
		return fmt.Errorf("finalize video status failed: %w", err)
	}
	return nil
}

// markFailed records the terminal FAILED state, leaving HLSPath null so the
// video is never advertised as playable.
func (c *Consumer) markFailed(video *domain.Video) {
	video.Status = domain.VideoFailed
	video.HLSPath = nil
	if err := c.videoRepo.Update(video); err != nil {
		logger.Log.Errorf(fmt.Sprintf("videoID[%s] write FAILED status failed", video.ID), err)
	}
}

func (c *Consumer) ack(d amqp.Delivery) {
	if err := d.Ack(false); err != nil {
		logger.Log.Errorf("ack message failed", err)
	}
}

// nackDrop rejects without requeue: the failure is already recorded in the
// status store, so the message routes to the dead-letter path instead of
// spinning in the active queue.
func (c *Consumer) nackDrop(d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		logger.Log.Errorf("nack message failed", err)
	}
}
