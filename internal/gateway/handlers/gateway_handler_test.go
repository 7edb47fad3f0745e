package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"live_stream_service/internal/video/domain"
	"live_stream_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockMinIOClient mocks the processed object store
type MockMinIOClient struct {
	mock.Mock
}

func (m *MockMinIOClient) EnsureBucket(ctx context.Context, bucket string) error {
	args := m.Called(ctx, bucket)
	return args.Error(0)
}

func (m *MockMinIOClient) PutObject(ctx context.Context, bucket, objectName string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, bucket, objectName, reader, size, contentType)
	return args.Error(0)
}

func (m *MockMinIOClient) GetObject(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, objectName)
	if rc := args.Get(0); rc != nil {
		return rc.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMinIOClient) StatObject(ctx context.Context, bucket, objectName string) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucket, objectName)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockMinIOClient) UploadFile(ctx context.Context, bucket, objectName, filePath, contentType string) error {
	args := m.Called(ctx, bucket, objectName, filePath, contentType)
	return args.Error(0)
}

func (m *MockMinIOClient) DownloadFile(ctx context.Context, bucket, objectName, destPath string) error {
	args := m.Called(ctx, bucket, objectName, destPath)
	return args.Error(0)
}

func newTestApp(minioClient *MockMinIOClient, uploadServiceURL string) *fiber.App {
	h := NewGatewayHandler(minioClient, uploadServiceURL)
	app := fiber.New()
	app.Post("/upload", h.ProxyUpload)
	app.Get("/videos", h.GetVideos)
	app.Get("/videos/:id", h.GetVideoStatus)
	app.Get("/hls/:videoId/:fileName", h.GetHLSFile)
	return app
}

func TestGetHLSFile(t *testing.T) {
	logger.SetNewNop()

	t.Run("missing object responds NotFound, never empty success", func(t *testing.T) {
		mockMinIO := new(MockMinIOClient)
		app := newTestApp(mockMinIO, "")

		mockMinIO.On("StatObject", mock.Anything, domain.ProcessedBucket, "ghost/index.m3u8").
			Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/hls/ghost/index.m3u8", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "HLS file not found")
	})

	t.Run("other storage failures respond BadGateway", func(t *testing.T) {
		mockMinIO := new(MockMinIOClient)
		app := newTestApp(mockMinIO, "")

		mockMinIO.On("StatObject", mock.Anything, domain.ProcessedBucket, "vid/index.m3u8").
			Return(minio.ObjectInfo{}, errors.New("connection refused")).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/hls/vid/index.m3u8", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("manifest streamed with stored content type", func(t *testing.T) {
		mockMinIO := new(MockMinIOClient)
		app := newTestApp(mockMinIO, "")

		manifest := "#EXTM3U\n#EXT-X-VERSION:3\n"
		mockMinIO.On("StatObject", mock.Anything, domain.ProcessedBucket, "vid/index.m3u8").
			Return(minio.ObjectInfo{ContentType: domain.ManifestContentType}, nil).Once()
		mockMinIO.On("GetObject", mock.Anything, domain.ProcessedBucket, "vid/index.m3u8").
			Return(io.NopCloser(strings.NewReader(manifest)), nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/hls/vid/index.m3u8", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, domain.ManifestContentType, resp.Header.Get(fiber.HeaderContentType))

		body, _ := io.ReadAll(resp.Body)
		assert.True(t, strings.HasPrefix(string(body), "#EXTM3U"))
	})

	t.Run("segment falls back to extension content type when metadata absent", func(t *testing.T) {
		mockMinIO := new(MockMinIOClient)
		app := newTestApp(mockMinIO, "")

		mockMinIO.On("StatObject", mock.Anything, domain.ProcessedBucket, "vid/segment_000.ts").
			Return(minio.ObjectInfo{}, nil).Once()
		mockMinIO.On("GetObject", mock.Anything, domain.ProcessedBucket, "vid/segment_000.ts").
			Return(io.NopCloser(strings.NewReader("ts-bytes")), nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/hls/vid/segment_000.ts", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, domain.SegmentContentType, resp.Header.Get(fiber.HeaderContentType))
	})
}

func TestProxyEndpoints(t *testing.T) {
	logger.SetNewNop()

	t.Run("video list passes upstream response through", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/videos", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":"vid-1","status":"PENDING"}]`))
		}))
		defer upstream.Close()

		app := newTestApp(new(MockMinIOClient), upstream.URL)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/videos", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), `"vid-1"`)
	})

	t.Run("upstream content type passes through unchanged", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_, _ = w.Write([]byte(`[]`))
		}))
		defer upstream.Close()

		app := newTestApp(new(MockMinIOClient), upstream.URL)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/videos", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get(fiber.HeaderContentType))
	})

	t.Run("upstream error envelope passes through with its status", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"videoID[nope] not found"}`))
		}))
		defer upstream.Close()

		app := newTestApp(new(MockMinIOClient), upstream.URL)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/videos/nope", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "not found")
	})

	t.Run("unreachable upstream responds BadGateway envelope", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		upstream.Close() // nothing listens any more

		app := newTestApp(new(MockMinIOClient), upstream.URL)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/videos", nil), -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "error")
	})

	t.Run("upload forwarded as multipart with field file", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/upload", r.URL.Path)
			file, header, err := r.FormFile("file")
			assert.NoError(t, err)
			defer file.Close()
			assert.Equal(t, "clip.mp4", header.Filename)

			content, _ := io.ReadAll(file)
			assert.Equal(t, "dummy video content", string(content))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"videoId":"vid-1","status":"PENDING","storageKey":"tok/1-clip.mp4"}`))
		}))
		defer upstream.Close()

		app := newTestApp(new(MockMinIOClient), upstream.URL)

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", "clip.mp4")
		assert.NoError(t, err)
		_, err = part.Write([]byte("dummy video content"))
		assert.NoError(t, err)
		assert.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/upload", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := app.Test(req, -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		respBody, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(respBody), `"vid-1"`)
	})

	t.Run("upload without file rejected before proxying", func(t *testing.T) {
		app := newTestApp(new(MockMinIOClient), "http://127.0.0.1:0")

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/upload", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
