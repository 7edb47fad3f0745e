package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"live_stream_service/pkg/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinIOClientRepo definition minio client operations against named buckets
type MinIOClientRepo interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, objectName string, reader io.Reader, size int64, contentType string) error
	GetObject(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	StatObject(ctx context.Context, bucket, objectName string) (minio.ObjectInfo, error)
	UploadFile(ctx context.Context, bucket, objectName, filePath, contentType string) error
	DownloadFile(ctx context.Context, bucket, objectName, destPath string) error
}

// MinIOClient definition minio client
type MinIOClient struct {
	Client *minio.Client
}

// NewMinIOConnection create a new minio connection with retry
func NewMinIOConnection(d MinIOConnection) (*MinIOClient, error) {
	var mc *MinIOClient
	var err error

	for i := 1; i <= d.RetryCount; i++ {
		mc, err = NewMinioClient(d.Endpoint, d.User, d.Password, d.UseSSL)
		if err == nil {
			logger.Log.Info("minIO connected",
				zap.String("endpoint", d.Endpoint), zap.Int("attempt", i))
			return mc, nil
		}

		logger.Log.Warn("minIO connect failed, retrying...",
			zap.String("endpoint", d.Endpoint),
			zap.Int("attempt", i), zap.Int("max", d.RetryCount), zap.Error(err))
		time.Sleep(d.RetryInterval * time.Second)
	}

	return mc, err
}

// NewMinioClient create a new minio client
func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*MinIOClient, error) {
	minioClient, err := minio.New(endpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
			Secure: useSSL,
		})
	if err != nil {
		return nil, fmt.Errorf("init MinIO failed: %v", err)
	}

	return &MinIOClient{Client: minioClient}, nil
}

// EnsureBucket creates bucket when absent. Safe to call repeatedly; the
// existence check hits the server every time so a restarted broker or a
// dropped bucket is always caught.
func (m *MinIOClient) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := m.Client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket [%s] failed: %v", bucket, err)
	}
	if exists {
		return nil
	}

	if err = m.Client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		// a concurrent caller may have won the create
		if exists, checkErr := m.Client.BucketExists(ctx, bucket); checkErr == nil && exists {
			return nil
		}
		return fmt.Errorf("create bucket [%s] failed: %v", bucket, err)
	}
	logger.Log.Info("bucket created", zap.String("bucket", bucket))
	return nil
}

// PutObject writes reader to bucket/objectName. size may be -1 when unknown.
func (m *MinIOClient) PutObject(ctx context.Context, bucket, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := m.Client.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// GetObject opens bucket/objectName for reading. The read itself surfaces
// a missing key; callers that must distinguish NotFound stat first.
func (m *MinIOClient) GetObject(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	obj, err := m.Client.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// StatObject fetches object metadata.
func (m *MinIOClient) StatObject(ctx context.Context, bucket, objectName string) (minio.ObjectInfo, error) {
	return m.Client.StatObject(ctx, bucket, objectName, minio.StatObjectOptions{})
}

// UploadFile minio upload file func
func (m *MinIOClient) UploadFile(ctx context.Context, bucket, objectName, filePath, contentType string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file failed: %v", err)
	}
	defer file.Close()

	_, err = m.Client.PutObject(ctx, bucket, objectName, file, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// DownloadFile minio download file func
func (m *MinIOClient) DownloadFile(ctx context.Context, bucket, objectName, destPath string) error {
	obj, err := m.Client.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("get object failed: %v", err)
	}
	defer obj.Close()

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create file failed: %v", err)
	}
	defer destFile.Close()

	if _, err = io.Copy(destFile, obj); err != nil {
		return err
	}
	return nil
}

// IsObjectNotFound reports whether err is the store's missing-key response.
func IsObjectNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}
