package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	upload "live_stream_service/internal/upload/app"
	"live_stream_service/internal/video/domain"
	errprocess "live_stream_service/pkg/err"
	"live_stream_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockUploadUseCase mocks the intake usecase
type MockUploadUseCase struct {
	mock.Mock
}

func (m *MockUploadUseCase) UploadVideo(ctx context.Context, up upload.UploadVideoReq) (*domain.UploadVideoRes, error) {
	args := m.Called(ctx, up)
	if res := args.Get(0); res != nil {
		return res.(*domain.UploadVideoRes), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUploadUseCase) GetVideo(ctx context.Context, videoID string) (*domain.VideoSummary, error) {
	args := m.Called(ctx, videoID)
	if res := args.Get(0); res != nil {
		return res.(*domain.VideoSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUploadUseCase) ListVideos(ctx context.Context) ([]domain.VideoSummary, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]domain.VideoSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestApp(usecase upload.UploadUseCase) *fiber.App {
	h := NewVideoHandler(usecase)
	app := fiber.New()
	app.Post("/upload", h.UploadVideo)
	app.Get("/videos", h.ListVideos)
	app.Get("/videos/:id", h.GetVideo)
	return app
}

func multipartUpload(t *testing.T, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	assert.NoError(t, err)
	_, err = part.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadVideoHandler(t *testing.T) {
	logger.SetNewNop()

	t.Run("accepted upload responds Created with record fields", func(t *testing.T) {
		mockUsecase := new(MockUploadUseCase)
		app := newTestApp(mockUsecase)

		mockUsecase.On("UploadVideo", mock.Anything, mock.MatchedBy(func(up upload.UploadVideoReq) bool {
			return up.FileName == "clip.mp4" && up.File != nil
		})).Return(&domain.UploadVideoRes{
			VideoID:    "vid-1",
			Status:     "PENDING",
			StorageKey: "tok/1-clip.mp4",
		}, nil).Once()

		resp, err := app.Test(multipartUpload(t, "clip.mp4", "dummy video content"))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), `"videoId":"vid-1"`)
		assert.Contains(t, string(body), `"status":"PENDING"`)
		mockUsecase.AssertExpectations(t)
	})

	t.Run("missing file field responds BadRequest", func(t *testing.T) {
		mockUsecase := new(MockUploadUseCase)
		app := newTestApp(mockUsecase)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/upload", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockUsecase.AssertNotCalled(t, "UploadVideo")
	})
}

func TestStatusHandlers(t *testing.T) {
	logger.SetNewNop()

	t.Run("unknown video responds NotFound envelope", func(t *testing.T) {
		mockUsecase := new(MockUploadUseCase)
		app := newTestApp(mockUsecase)

		mockUsecase.On("GetVideo", mock.Anything, "nope").
			Return(nil, errprocess.SetKind(errprocess.KindNotFound, "videoID[nope] not found", nil)).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/videos/nope", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "not found")
	})

	t.Run("list responds newest first as given by usecase", func(t *testing.T) {
		mockUsecase := new(MockUploadUseCase)
		app := newTestApp(mockUsecase)

		mockUsecase.On("ListVideos", mock.Anything).Return([]domain.VideoSummary{
			{ID: "newer", Status: "COMPLETED"},
			{ID: "older", Status: "FAILED"},
		}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/videos", nil))
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Regexp(t, `"newer".*"older"`, string(body))
	})
}
