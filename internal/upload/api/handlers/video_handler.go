package handlers

import (
	"net/http"

	"live_stream_service/internal/upload/app"
	errprocess "live_stream_service/pkg/err"

	"github.com/gofiber/fiber/v2"
)

// VideoHandler definition upload and status HTTP handlers
type VideoHandler struct {
	Usecase app.UploadUseCase
}

// NewVideoHandler create video handler
func NewVideoHandler(usecase app.UploadUseCase) *VideoHandler {
	return &VideoHandler{Usecase: usecase}
}

// UploadVideo accepts a multipart upload, stores it and queues the
// transcode job. Field name is "file".
func (h *VideoHandler) UploadVideo(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": `no file provided, use multipart/form-data with field name "file"`,
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "failed to open uploaded file"})
	}
	defer file.Close()

	res, err := h.Usecase.UploadVideo(c.UserContext(), app.UploadVideoReq{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		File:        file,
	})
	if err != nil {
		return failJSON(c, err)
	}

	return c.Status(http.StatusCreated).JSON(res)
}

// GetVideo one video summary by id
func (h *VideoHandler) GetVideo(c *fiber.Ctx) error {
	summary, err := h.Usecase.GetVideo(c.UserContext(), c.Params("id"))
	if err != nil {
		return failJSON(c, err)
	}
	return c.JSON(summary)
}

// ListVideos all video summaries, newest first
func (h *VideoHandler) ListVideos(c *fiber.Ctx) error {
	summaries, err := h.Usecase.ListVideos(c.UserContext())
	if err != nil {
		return failJSON(c, err)
	}
	return c.JSON(summaries)
}

// failJSON maps the error taxonomy to a status code and the uniform
// error envelope.
func failJSON(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	switch errprocess.KindOf(err) {
	case errprocess.KindClientInput:
		status = http.StatusBadRequest
	case errprocess.KindNotFound:
		status = http.StatusNotFound
	case errprocess.KindUpstream:
		status = http.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
