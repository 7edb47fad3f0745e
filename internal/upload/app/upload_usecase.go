package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"live_stream_service/internal/video/domain"
	"live_stream_service/internal/video/repository"
	"live_stream_service/pkg/database"
	errprocess "live_stream_service/pkg/err"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// UploadUseCase definition upload intake and status lookup services
type UploadUseCase interface {
	UploadVideo(ctx context.Context, up UploadVideoReq) (*domain.UploadVideoRes, error)
	GetVideo(ctx context.Context, videoID string) (*domain.VideoSummary, error)
	ListVideos(ctx context.Context) ([]domain.VideoSummary, error)
}

// UploadVideoReq usecase upload video request
type UploadVideoReq struct {
	FileName    string
	ContentType string
	Size        int64
	File        io.Reader
}

type uploadUseCase struct {
	MinioClient   database.MinIOClientRepo
	VideoRepo     repository.VideoRepo
	RabbitChannel database.RabbitRepo
}

// NewUploadUseCase create a new UploadUseCase
func NewUploadUseCase(minIO database.MinIOClientRepo,
	repo repository.VideoRepo,
	rabbitChannel database.RabbitRepo,
) UploadUseCase {
	return &uploadUseCase{
		MinioClient:   minIO,
		VideoRepo:     repo,
		RabbitChannel: rabbitChannel,
	}
}

// test seams
var (
	newID = func() string {
		return uuid.NewString()
	}

	nowUnixMilli = func() int64 {
		return time.Now().UnixMilli()
	}
)

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// BuildStorageKey combines a fresh random token, a timestamp and the
// sanitized original name, so concurrent uploads of the same file never
// collide in the raw bucket.
func BuildStorageKey(originalName string) string {
	safeName := unsafeKeyChars.ReplaceAllString(originalName, "_")
	return fmt.Sprintf("%s/%d-%s", newID(), nowUnixMilli(), safeName)
}

// UploadVideo stores the raw bytes, creates the PENDING record, then
// publishes the transcode job. The record is persisted before the publish
// so a queue failure can never leave a job referencing no record.
func (s *uploadUseCase) UploadVideo(ctx context.Context, up UploadVideoReq) (*domain.UploadVideoRes, error) {
	if up.File == nil || up.FileName == "" {
		return nil, errprocess.SetKind(errprocess.KindClientInput,
			`no file provided, use multipart/form-data with field name "file"`, nil)
	}

	if err := s.MinioClient.EnsureBucket(ctx, domain.RawBucket); err != nil {
		errMsg := fmt.Sprintf("fileName[%s] ensure raw bucket failed", up.FileName)
		return nil, errprocess.SetKind(errprocess.KindUpstream, errMsg, err)
	}

	storageKey := BuildStorageKey(up.FileName)
	if err := s.MinioClient.PutObject(ctx, domain.RawBucket, storageKey, up.File, up.Size, up.ContentType); err != nil {
		errMsg := fmt.Sprintf("fileName[%s] raw upload failed", up.FileName)
		return nil, errprocess.SetKind(errprocess.KindUpstream, errMsg, err)
	}

	video := domain.Video{
		ID:               newID(),
		OriginalFileName: up.FileName,
		StorageKey:       storageKey,
		Status:           domain.VideoPending,
		HLSPath:          nil,
	}
	if err := s.VideoRepo.Create(&video); err != nil {
		errMsg := fmt.Sprintf("fileName[%s] create video record failed", up.FileName)
		return nil, errprocess.SetKind(errprocess.KindPersistence, errMsg, err)
	}

	job := domain.TranscodeJob{VideoID: video.ID}
	data, err := json.Marshal(job)
	if err != nil {
		errMsg := fmt.Sprintf("videoID[%s] marshal transcode job failed", video.ID)
		return nil, errprocess.SetKind(errprocess.KindUpstream, errMsg, err)
	}
	err = s.RabbitChannel.Publish(
		"", // default exchange
		domain.QueueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent, // survives broker restart
			Body:         data,
		},
	)
	if err != nil {
		errMsg := fmt.Sprintf("videoID[%s] publish transcode job failed", video.ID)
		return nil, errprocess.SetKind(errprocess.KindUpstream, errMsg, err)
	}

	return &domain.UploadVideoRes{
		VideoID:    video.ID,
		Status:     string(video.Status),
		StorageKey: video.StorageKey,
	}, nil
}

// GetVideo get one video summary by id
func (s *uploadUseCase) GetVideo(ctx context.Context, videoID string) (*domain.VideoSummary, error) {
	video, err := s.VideoRepo.GetByID(videoID)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			errMsg := fmt.Sprintf("videoID[%s] not found", videoID)
			return nil, errprocess.SetKind(errprocess.KindNotFound, errMsg, err)
		}
		errMsg := fmt.Sprintf("videoID[%s] status lookup failed", videoID)
		return nil, errprocess.SetKind(errprocess.KindUpstream, errMsg, err)
	}

	summary := video.Summary()
	return &summary, nil
}

// ListVideos all video summaries, newest first
func (s *uploadUseCase) ListVideos(ctx context.Context) ([]domain.VideoSummary, error) {
	videos, err := s.VideoRepo.ListNewestFirst()
	if err != nil {
		return nil, errprocess.SetKind(errprocess.KindUpstream, "list videos failed", err)
	}

	summaries := make([]domain.VideoSummary, len(videos))
	for i := range videos {
		summaries[i] = videos[i].Summary()
	}
	return summaries, nil
}
